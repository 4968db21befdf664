package core

import "time"

// Render scale bounds applied by Quality.
const (
	MinRenderScale = 0.55
	MaxRenderScale = 1.0
)

// Quality adapts the render resolution to measured frame time. It keeps an
// exponentially weighted average and nudges the scale down quickly when frames
// run long and back up slowly when there is headroom.
type Quality struct {
	budget time.Duration
	avg    float64
	scale  float64
	primed bool

	// Alpha is the EWMA weight of the newest sample.
	Alpha float64
	// StepDown and StepUp are the per-sample scale adjustments.
	StepDown float64
	StepUp   float64
}

// NewQuality returns a controller targeting the given frame budget.
func NewQuality(budget time.Duration) *Quality {
	if budget <= 0 {
		budget = time.Second / 60
	}
	return &Quality{
		budget:   budget,
		scale:    MaxRenderScale,
		Alpha:    0.1,
		StepDown: 0.05,
		StepUp:   0.02,
	}
}

// Scale returns the current render scale in [MinRenderScale, MaxRenderScale].
func (q *Quality) Scale() float64 { return q.scale }

// Observe records one frame duration and returns the updated scale.
func (q *Quality) Observe(frame time.Duration) float64 {
	sample := float64(frame)
	if !q.primed {
		q.avg = sample
		q.primed = true
	} else {
		q.avg += q.Alpha * (sample - q.avg)
	}

	budget := float64(q.budget)
	switch {
	case q.avg > budget*1.15:
		q.scale -= q.StepDown
	case q.avg < budget*0.7:
		q.scale += q.StepUp
	}
	q.scale = ClampScale(q.scale)
	return q.scale
}

// ClampScale bounds a render scale. Zero and non-positive values mean full
// resolution.
func ClampScale(s float64) float64 {
	if !(s > 0) {
		return MaxRenderScale
	}
	if s < MinRenderScale {
		return MinRenderScale
	}
	if s > MaxRenderScale {
		return MaxRenderScale
	}
	return s
}
