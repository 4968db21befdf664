package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rule-bloom/internal/core"
)

func TestObserveAccumulates(t *testing.T) {
	m := New()
	m.Observe(core.TickStats{Tick: 1, Alive: 10, Topples: 3, Decays: 2, GrainsAdded: 10}, time.Millisecond)
	m.Observe(core.TickStats{Tick: 2, Alive: 7, Topples: 4, Decays: 1, GrainsAdded: 7}, 2*time.Millisecond)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.topples))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.decays))
	assert.Equal(t, 17.0, testutil.ToFloat64(m.grainsAdded))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.alive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tick))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stepSeconds))

	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP rulebloom_topples_total Sandpile topples performed.
# TYPE rulebloom_topples_total counter
rulebloom_topples_total 7
`), "rulebloom_topples_total")
	assert.NoError(t, err)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Observe(core.TickStats{Topples: 5}, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.topples))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.Observe(core.TickStats{Tick: 3, Alive: 1}, time.Microsecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "rulebloom_tick 3")
	assert.Contains(t, body, "rulebloom_step_seconds_count 1")
}
