// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvAPIURL overrides the API base URL from the config file.
const EnvAPIURL = "NOMES_API_URL"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API   APIConfig   `toml:"api"`
	UI    UIConfig    `toml:"ui"`
	Serve ServeConfig `toml:"serve"`
}

// APIConfig maps statistics API settings.
type APIConfig struct {
	BaseURL *string   `toml:"base-url"`
	Timeout *Duration `toml:"timeout"`
}

// UIConfig maps ranking view settings.
type UIConfig struct {
	ToastDuration *Duration `toml:"toast-duration"`
	Color         *bool     `toml:"color"`
}

// ServeConfig maps settings of the local stand-in API.
type ServeConfig struct {
	Addr *string `toml:"addr"`
	DB   *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// A non-empty NOMES_API_URL replaces the configured base URL.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	var cfg FileConfig
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	applyEnvironmentOverrides(&cfg)
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *FileConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = &v
	}
}
