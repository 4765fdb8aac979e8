package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// configFile is the name of the TOML config file under configDir().
const configFile = "config.toml"

// fileConfig is the on-disk CLI configuration.
//
// Example ~/.config/qtopo/config.toml:
//
//	server_url = "http://localhost:8000"
//	user_id = "alice"
//	autosave_interval_seconds = 2
type fileConfig struct {
	ServerURL        string `toml:"server_url"`
	UserID           string `toml:"user_id"`
	AutosaveInterval int    `toml:"autosave_interval_seconds"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() fileConfig {
	return fileConfig{
		ServerURL:        "http://localhost:8000",
		AutosaveInterval: 2,
	}
}

// loadConfig reads the TOML config file, falling back to defaults when the
// file is absent. File values override defaults field by field.
func loadConfig() (fileConfig, error) {
	cfg := defaultConfig()

	dir, err := configDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultConfig().ServerURL
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = defaultConfig().AutosaveInterval
	}
	return cfg, nil
}
