package calsync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConferencePolicy controls whether calendar creation asks the provider for
// a real meeting link. Student and other restricted account types cannot
// create Meets, so "none" substitutes an empty conference blob instead of
// failing the whole calendar creation.
type ConferencePolicy string

const (
	ConferenceMeet ConferencePolicy = "meet"
	ConferenceNone ConferencePolicy = "none"
)

type Config struct {
	DatabasePath     string                  `toml:"database_path"`
	ConferencePolicy ConferencePolicy        `toml:"conference_policy"`
	VerbosityLevel   int                     `toml:"verbosity_level"`
	Google           GoogleConfig            `toml:"google"`
	CalDAVs          map[string]CalDAVConfig `toml:"caldavs"`

	dir string // where the config file was found; relative paths resolve here
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type CalDAVConfig struct {
	Name      string `toml:"name"`
	ServerURL string `toml:"server_url"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ReadConfig loads a TOML config, trying first the current dir, then
// `$HOME/.config/ratatoskr-calsync/`.
func ReadConfig(filename string) (*Config, error) {
	dir := ""
	data, err := os.ReadFile(filename)
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config", "ratatoskr-calsync")
		data, err = os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return nil, err
		}
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.dir = dir

	if config.DatabasePath == "" {
		config.DatabasePath = ".ratatoskr-calsync.db"
	}
	switch config.ConferencePolicy {
	case "":
		config.ConferencePolicy = ConferenceMeet
	case ConferenceMeet, ConferenceNone:
	default:
		return nil, fmt.Errorf("unknown conference_policy %q", config.ConferencePolicy)
	}

	return &config, nil
}

// DatabaseFile resolves the configured database path against the directory
// the config file was found in.
func (c *Config) DatabaseFile() string {
	if filepath.IsAbs(c.DatabasePath) || c.dir == "" {
		return c.DatabasePath
	}
	return filepath.Join(c.dir, c.DatabasePath)
}
