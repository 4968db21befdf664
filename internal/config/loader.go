package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the config file looked up in the working directory and its
// parents when no explicit path is given.
const FileName = "rulebloom.yaml"

// Loader resolves and loads the configuration file.
type Loader struct {
	logger *slog.Logger
	dir    string
}

// NewLoader creates a loader searching from the working directory.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the explicit path when set; otherwise the nearest rulebloom.yaml,
// falling back to defaults. The result is validated.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = l.findProjectConfig()
	}
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", path))
		cfg = loaded
	} else {
		l.logger.Debug("No config file found, using defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) findProjectConfig() string {
	dir := l.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
