// Package config loads the rulebloom.yaml file shared by the CLI commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rule-bloom/internal/render"
	"rule-bloom/internal/sims/rulebloom"
)

// Config is the complete on-disk configuration.
type Config struct {
	// Regime picks the parameter bundle: calm, balanced or volatile.
	Regime string `yaml:"regime"`
	Seed   int64  `yaml:"seed"`
	// Width of the lane; 0 means the regime default.
	Width         int  `yaml:"width"`
	ReducedMotion bool `yaml:"reduced_motion"`
	// Params overrides individual parameters by snake_case key.
	Overrides map[string]string `yaml:"params,omitempty"`
	Render    RenderConfig      `yaml:"render"`
	Run       RunConfig         `yaml:"run"`
}

// RenderConfig sizes the frame and picks colours.
type RenderConfig struct {
	CSSWidth    float64           `yaml:"css_width"`
	CSSHeight   float64           `yaml:"css_height"`
	DPR         float64           `yaml:"dpr"`
	Scale       float64           `yaml:"scale"`
	HistoryRows int               `yaml:"history_rows"`
	Scanlines   bool              `yaml:"scanlines"`
	Theme       map[string]string `yaml:"theme,omitempty"`
}

// RunConfig drives the tick loops.
type RunConfig struct {
	Ticks    int `yaml:"ticks"`
	TPS      int `yaml:"tps"`
	LogEvery int `yaml:"log_every"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Regime: string(rulebloom.RegimeBalanced),
		Seed:   1,
		Width:  rulebloom.DefaultWidth,
		Render: RenderConfig{
			CSSWidth:  960,
			CSSHeight: 540,
			DPR:       1,
			Scale:     1,
			Scanlines: true,
		},
		Run: RunConfig{
			Ticks:    600,
			TPS:      60,
			LogEvery: 120,
		},
	}
}

// Validate rejects settings that cannot be applied.
func (c *Config) Validate() error {
	if _, ok := rulebloom.ParseRegime(c.Regime); !ok {
		return fmt.Errorf("regime %q is not one of %s", c.Regime, regimeList())
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative")
	}
	if unknown := rulebloom.UnknownKeys(c.Overrides); len(unknown) > 0 {
		return fmt.Errorf("unknown params: %s (want any of %s)", strings.Join(unknown, ", "), strings.Join(rulebloom.ParamKeys(), ", "))
	}
	var scratch rulebloom.Params
	for k, v := range c.Overrides {
		if !rulebloom.SetParam(&scratch, k, v) {
			return fmt.Errorf("params.%s: cannot parse %q", k, v)
		}
	}
	if _, err := render.DefaultTheme().WithHex(c.Render.Theme); err != nil {
		return fmt.Errorf("render.theme: %w", err)
	}
	if c.Run.Ticks < 0 {
		return fmt.Errorf("run.ticks must not be negative")
	}
	if c.Run.TPS <= 0 {
		return fmt.Errorf("run.tps must be positive")
	}
	return nil
}

func regimeList() string {
	names := make([]string, 0, 3)
	for _, r := range rulebloom.Regimes() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// Profile returns the regime selection.
func (c *Config) Profile() rulebloom.ProfileOptions {
	regime, _ := rulebloom.ParseRegime(c.Regime)
	return rulebloom.ProfileOptions{
		Seed:          c.Seed,
		Width:         c.Width,
		ReducedMotion: c.ReducedMotion,
		Regime:        regime,
	}
}

// Params expands the regime and layers the per-key overrides on top.
func (c *Config) Params() rulebloom.Params {
	return rulebloom.ApplyOverrides(rulebloom.BuildParams(c.Profile()), c.Overrides)
}

// RenderOptions builds renderer settings from the render block.
func (c *Config) RenderOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	theme, err := opts.Theme.WithHex(c.Render.Theme)
	if err != nil {
		return opts, err
	}
	opts.Theme = theme
	opts.HistoryRows = c.Render.HistoryRows
	opts.Scanlines = c.Render.Scanlines
	return opts, nil
}

// ResizeRequest returns the configured display size.
func (c *Config) ResizeRequest() render.ResizeRequest {
	return render.ResizeRequest{
		CSSWidth:  c.Render.CSSWidth,
		CSSHeight: c.Render.CSSHeight,
		DPR:       c.Render.DPR,
		Scale:     c.Render.Scale,
	}
}

// Decode reads YAML on top of the defaults. Unknown fields are an error.
func Decode(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
