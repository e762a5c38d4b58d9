package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shrvim/shrvimd/internal/logging"
)

// ServerDefaults holds process-level tuning that sits above the
// protocol; it holds log verbosity only. None of this is
// part of the wire-protocol contract, so it lives in an optional YAML
// file rather than the positional process arguments.
type ServerDefaults struct {
	LogLevel string `yaml:"log_level"`
}

// LevelOrDefault resolves the configured level, defaulting to info.
func (d ServerDefaults) LevelOrDefault() logging.Level {
	switch d.LogLevel {
	case "debug":
		return logging.LevelDebug
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// LoadServerDefaults reads an optional YAML file; a missing file yields
// zero-value defaults rather than an error.
func LoadServerDefaults(path string) (ServerDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ServerDefaults{}, nil
		}
		return ServerDefaults{}, fmt.Errorf("config: read defaults %s: %w", path, err)
	}

	var d ServerDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return ServerDefaults{}, fmt.Errorf("config: parse defaults %s: %w", path, err)
	}
	return d, nil
}
