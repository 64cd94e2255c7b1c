package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"opjit/pkg/jit"
)

// DefaultConfigName is looked up in the working directory when --config is
// not given.
const DefaultConfigName = "opjit.yml"

// Config is the optional opjit.yml file.
//
//	options:
//	  pass_through_null: false
//	debug: true
//	history: ~/.opjit_history
type Config struct {
	Options jit.Options `yaml:"options"`
	Debug   bool        `yaml:"debug"`
	History string      `yaml:"history"`
}

// DefaultConfig is used when no file is found.
func DefaultConfig() Config {
	cfg := Config{Options: jit.Defaults()}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.History = filepath.Join(home, ".opjit_history")
	}
	return cfg
}

// LoadConfig reads path on top of DefaultConfig. When path is empty the
// default file is tried and silently skipped if absent.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}
	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	if err := decodeConfig(file, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.History = expandHome(cfg.History)
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
