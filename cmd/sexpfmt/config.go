package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "sexpfmt.toml"

type fileConfig struct {
	Width int `toml:"width"`
}

// findConfig walks from startDir toward the filesystem root and returns the
// first sexpfmt.toml it sees.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig returns the nearest config, reporting whether one was found.
// A config that exists but cannot be used stops the run; silently ignoring
// it would format with a width the user did not ask for.
func loadConfig(startDir string) (fileConfig, bool, error) {
	path, ok, err := findConfig(startDir)
	if err != nil || !ok {
		return fileConfig{}, ok, err
	}
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, true, fmt.Errorf("%s: parse: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fileConfig{}, true, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("width") && cfg.Width <= 0 {
		return fileConfig{}, true, fmt.Errorf("%s: width must be positive, got %d", path, cfg.Width)
	}
	return cfg, true, nil
}
