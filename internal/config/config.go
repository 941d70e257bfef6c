// Package config loads client configuration from the user's rc file and the
// environment. Environment variables override file values, which override
// the built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	// Section is the rc-file section holding client settings.
	Section = "nsot"

	defaultURL = "http://localhost:8990/api"
)

// Config holds the settings every invocation needs.
type Config struct {
	// URL is the base URL of the inventory API.
	URL string

	// Email identifies the caller to the API.
	Email string

	// SecretKey authenticates the caller.
	SecretKey string

	// DefaultSite is used when a command does not pass -s/--site-id.
	// Empty means no default.
	DefaultSite string
}

// Load reads the rc file named by NSOT_CONF, falling back to ~/.nsotrc, then
// applies environment overrides. A missing file is not an error; a malformed
// one is.
func Load() (Config, error) {
	return load(rcPath())
}

func rcPath() string {
	if path := os.Getenv("NSOT_CONF"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nsotrc")
}

func load(path string) (Config, error) {
	cfg := Config{URL: defaultURL}

	if path != "" {
		file, err := ini.LooseLoad(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		sec := file.Section(Section)
		if v := sec.Key("url").String(); v != "" {
			cfg.URL = v
		}
		cfg.Email = sec.Key("email").String()
		cfg.SecretKey = sec.Key("secret_key").String()
		cfg.DefaultSite = sec.Key("default_site").String()
	}

	if v := os.Getenv("NSOT_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("NSOT_EMAIL"); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv("NSOT_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("NSOT_DEFAULT_SITE"); v != "" {
		cfg.DefaultSite = v
	}

	return cfg, nil
}
