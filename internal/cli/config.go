package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds optional CLI defaults read from bikefit.toml. Every field is
// optional; command-line flags always win over the config file.
type Config struct {
	CacheDir string   `toml:"cache_dir"` // overrides the XDG cache location
	Formats  []string `toml:"formats"`   // default output formats for render

	Serve struct {
		Addr  string `toml:"addr"`  // listen address
		Redis string `toml:"redis"` // redis address for the shared cache
		Mongo string `toml:"mongo"` // mongodb URI for the bike library
	} `toml:"serve"`
}

// cliConfig is loaded once before any command runs. A missing config file
// leaves it zero-valued.
var cliConfig Config

// configPath returns the config file location using XDG standard
// (~/.config/bikefit/bikefit.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "bikefit.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "bikefit.toml"), nil
}

// loadConfig reads bikefit.toml when present. A missing file yields the zero
// config; a malformed file is an error.
func loadConfig() (Config, error) {
	var cfg Config
	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}
