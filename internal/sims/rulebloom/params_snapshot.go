package rulebloom

import (
	"strconv"

	"rule-bloom/internal/core"
)

var groupOrder = []string{"Lane", "Sandpile", "Decay", "Coupling"}

// Parameters describes the engine's normalized tunables, grouped for display.
func (e *Engine) Parameters() core.ParameterSnapshot {
	return ParameterSnapshot(e.params)
}

// ParameterSnapshot groups p for HUD and CLI output.
func ParameterSnapshot(p Params) core.ParameterSnapshot {
	groups := make([]core.ParameterGroup, 0, len(groupOrder))
	for _, name := range groupOrder {
		g := core.ParameterGroup{Name: name}
		for _, f := range paramFields {
			if f.group != name {
				continue
			}
			switch {
			case f.key == "seed":
				g.Params = append(g.Params, int64Param(f.key, f.label, p.Seed))
			case f.typ == core.ParamTypeInt:
				g.Params = append(g.Params, intParam(f.key, f.label, int(f.get(p))))
			default:
				g.Params = append(g.Params, floatParam(f.key, f.label, f.get(p)))
			}
		}
		groups = append(groups, g)
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
