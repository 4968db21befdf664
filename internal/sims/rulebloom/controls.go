package rulebloom

import "rule-bloom/internal/core"

var controls = []core.ParameterControl{
	intControl("topple_threshold", "Topple threshold", 1, 4, 4096),
	intControl("grains_per_alive_cell", "Grains per alive", 1, 0, 64),
	intControl("grain_to_rule_threshold", "Rule threshold", 1, 1, MaxGrains),
	floatControl("decay_chance", "Decay chance", 0.05),
	floatControl("grain_to_rule_chance", "Rule chance", 0.01),
	floatControl("initial_alive_chance", "Alive chance", 0.02),
}

func intControl(key, label string, step, lo, hi float64) core.ParameterControl {
	return core.ParameterControl{
		Key: key, Label: label, Type: core.ParamTypeInt, Step: step,
		Min: lo, Max: hi, HasMin: true, HasMax: true,
	}
}

func floatControl(key, label string, step float64) core.ParameterControl {
	return core.ParameterControl{
		Key: key, Label: label, Type: core.ParamTypeFloat, Step: step,
		Min: 0, Max: 1, HasMin: true, HasMax: true,
	}
}

// ParameterControls lists the parameters that can be nudged while running.
func (e *Engine) ParameterControls() []core.ParameterControl {
	out := make([]core.ParameterControl, len(controls))
	copy(out, controls)
	return out
}

// SetIntParameter retunes an integer parameter in place. Changing the width
// or seed rebuilds the lane; other changes keep the current state. Reset and
// Restart drop the retuning.
func (e *Engine) SetIntParameter(key string, value int) bool {
	f, ok := lookupField(key)
	if !ok || f.typ != core.ParamTypeInt {
		return false
	}
	p := e.params
	if key == "seed" {
		p.Seed = int64(value)
	} else {
		f.set(&p, float64(value))
	}
	e.retune(p)
	return true
}

// SetFloatParameter retunes a float parameter in place.
func (e *Engine) SetFloatParameter(key string, value float64) bool {
	f, ok := lookupField(key)
	if !ok || f.typ != core.ParamTypeFloat {
		return false
	}
	p := e.params
	f.set(&p, value)
	e.retune(p)
	return true
}

func (e *Engine) retune(p Params) {
	p = NormalizeParams(p)
	rebuild := p.Width != e.params.Width || p.Seed != e.params.Seed
	e.params = p
	if rebuild {
		e.state = NewStateFromParams(p)
	}
}

var (
	_ core.ParameterControlsProvider = (*Engine)(nil)
	_ core.IntParameterSetter        = (*Engine)(nil)
	_ core.FloatParameterSetter      = (*Engine)(nil)
	_ core.ParameterProvider         = (*Engine)(nil)
)
