package rulebloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterControlsMatchKeys(t *testing.T) {
	e := NewDefault()
	ctrls := e.ParameterControls()
	require.NotEmpty(t, ctrls)
	snap := e.Parameters()
	for _, c := range ctrls {
		param, ok := snap.Lookup(c.Key)
		require.True(t, ok, c.Key)
		assert.Equal(t, c.Type, param.Type, c.Key)
	}

	ctrls[0].Key = "mutated"
	assert.NotEqual(t, "mutated", e.ParameterControls()[0].Key)
}

func TestSetParameterKeepsState(t *testing.T) {
	e := NewDefault()
	e.StepMany(20)
	before := e.Snapshot()

	assert.True(t, e.SetFloatParameter("decay_chance", 0.9))
	assert.Equal(t, 0.9, e.Params().DecayChance)
	assert.Equal(t, before, e.Snapshot())

	assert.True(t, e.SetIntParameter("topple_threshold", 2))
	assert.Equal(t, 4, e.Params().ToppleThreshold)
	assert.Equal(t, uint64(20), e.State().Tick)

	assert.False(t, e.SetFloatParameter("topple_threshold", 5))
	assert.False(t, e.SetIntParameter("decay_chance", 1))
	assert.False(t, e.SetIntParameter("nope", 1))
}

func TestSetParameterRebuildsLane(t *testing.T) {
	e := NewDefault()
	e.StepMany(5)

	assert.True(t, e.SetIntParameter("width", 64))
	assert.Equal(t, 64, e.Width())
	assert.Len(t, e.State().Rule, 64)
	assert.Equal(t, uint64(0), e.State().Tick)

	assert.True(t, e.SetIntParameter("seed", 99))
	p := e.Params()
	assert.Equal(t, int64(99), p.Seed)
	assert.Equal(t, New(p).Snapshot(), e.Snapshot())
}

func TestRestartDropsRetuning(t *testing.T) {
	p := DefaultParams()
	p.Seed = 5
	e := New(p)
	e.StepMany(10)

	require.True(t, e.SetFloatParameter("decay_chance", 0.9))
	require.True(t, e.SetIntParameter("width", 64))
	e.StepMany(3)

	e.Restart()
	assert.Equal(t, e.OriginalParams(), e.Params())
	e.StepMany(100)

	fresh := New(p)
	fresh.StepMany(100)
	assert.Equal(t, fresh.Checksum(), e.Checksum())
	assert.Equal(t, fresh.Snapshot(), e.Snapshot())
}

func TestResetDropsRetuning(t *testing.T) {
	p := DefaultParams()
	e := New(p)
	require.True(t, e.SetIntParameter("topple_threshold", 9))

	e.Reset(77)
	e.StepMany(50)

	p.Seed = 77
	fresh := New(p)
	fresh.StepMany(50)
	assert.Equal(t, fresh.Snapshot(), e.Snapshot())
}
