package rulebloom

import (
	"sort"
	"strconv"

	"rule-bloom/internal/core"
	"rule-bloom/pkg/rng"
)

type paramField struct {
	key   string
	label string
	group string
	typ   core.ParamType
	get   func(Params) float64
	set   func(*Params, float64)
}

var paramFields = []paramField{
	intField("width", "Width", "Lane", func(p *Params) *int { return &p.Width }),
	{
		key: "seed", label: "Seed", group: "Lane", typ: core.ParamTypeInt,
		get: func(p Params) float64 { return float64(p.Seed) },
		set: func(p *Params, v float64) { p.Seed = int64(v) },
	},
	floatField("initial_alive_chance", "Initial alive chance", "Lane", func(p *Params) *float64 { return &p.InitialAliveChance }),
	intField("initial_grain_max", "Initial grain max", "Lane", func(p *Params) *int { return &p.InitialGrainMax }),
	intField("topple_threshold", "Topple threshold", "Sandpile", func(p *Params) *int { return &p.ToppleThreshold }),
	intField("max_topples_per_step", "Max topples per step", "Sandpile", func(p *Params) *int { return &p.MaxTopplesPerStep }),
	intField("grains_per_alive_cell", "Grains per alive cell", "Sandpile", func(p *Params) *int { return &p.GrainsPerAliveCell }),
	intField("decay_checks_per_step", "Decay checks per step", "Decay", func(p *Params) *int { return &p.DecayChecksPerStep }),
	floatField("decay_chance", "Decay chance", "Decay", func(p *Params) *float64 { return &p.DecayChance }),
	intField("grain_to_rule_threshold", "Grain to rule threshold", "Coupling", func(p *Params) *int { return &p.GrainToRuleThreshold }),
	floatField("grain_to_rule_chance", "Grain to rule chance", "Coupling", func(p *Params) *float64 { return &p.GrainToRuleChance }),
}

func intField(key, label, group string, ref func(*Params) *int) paramField {
	return paramField{
		key: key, label: label, group: group, typ: core.ParamTypeInt,
		get: func(p Params) float64 { return float64(*ref(&p)) },
		set: func(p *Params, v float64) { *ref(p) = int(v) },
	}
}

func floatField(key, label, group string, ref func(*Params) *float64) paramField {
	return paramField{
		key: key, label: label, group: group, typ: core.ParamTypeFloat,
		get: func(p Params) float64 { return *ref(&p) },
		set: func(p *Params, v float64) { *ref(p) = v },
	}
}

func lookupField(key string) (paramField, bool) {
	for _, f := range paramFields {
		if f.key == key {
			return f, true
		}
	}
	return paramField{}, false
}

// ParamKeys lists the override keys understood by ApplyOverrides.
func ParamKeys() []string {
	keys := make([]string, len(paramFields))
	for i, f := range paramFields {
		keys[i] = f.key
	}
	return keys
}

// SetParam parses value into the field named key. It reports false for
// unknown keys and unparsable values, leaving p untouched.
func SetParam(p *Params, key, value string) bool {
	f, ok := lookupField(key)
	if !ok {
		return false
	}
	if f.key == "seed" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.Seed = parsed
			return true
		}
		// Float spellings, including NaN and Inf, reduce to a usable seed.
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		p.Seed = int64(rng.NormalizeSeedFloat(parsed))
		return true
	}
	if f.typ == core.ParamTypeInt {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		f.set(p, float64(parsed))
		return true
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	f.set(p, parsed)
	return true
}

// ApplyOverrides layers flag-style key/value pairs over p. Unknown keys and
// unparsable values are ignored; the result is normalized.
func ApplyOverrides(p Params, kv map[string]string) Params {
	for k, v := range kv {
		SetParam(&p, k, v)
	}
	return NormalizeParams(p)
}

// UnknownKeys returns the sorted keys of kv that ApplyOverrides would ignore.
func UnknownKeys(kv map[string]string) []string {
	var out []string
	for k := range kv {
		if _, ok := lookupField(k); !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
