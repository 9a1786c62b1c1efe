// Package config loads optional per-project defaults from podforge.toml at
// the project root. Command-line flags always win over file values; a
// missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up in the project root.
const FileName = "podforge.toml"

// Config holds project-wide build defaults.
type Config struct {
	// Archs are the architecture identifiers built when --archs is not
	// given.
	Archs []string `toml:"archs"`
	// Static switches the default distribution mode.
	Static bool `toml:"static"`
	// Versions pins a version per target, used when the build argument
	// omits one.
	Versions map[string]string `toml:"versions"`
}

// Load reads podforge.toml from projectDir. An absent file yields the zero
// Config; a present but malformed file is an error.
func Load(projectDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}
