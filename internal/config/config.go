package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Config is one run's immutable configuration.
type Config struct {
	Token  string // GitHub bearer token
	APIURL string // optional API root override (GHE, tests)
}

var ErrMissingToken = errors.New("GITHUB_TOKEN not set")

// Load reads the optional ini file at path, then lets the environment
// override it. The token is required; a missing token fails here,
// before any network call is made.
func Load(path string) (Config, error) {
	var c Config

	if path != "" {
		cfg, err := ini.Load(path)
		if err != nil {
			return c, fmt.Errorf("load config %s: %w", path, err)
		}
		sec := cfg.Section("github")
		c.Token = sec.Key("token").String()
		c.APIURL = sec.Key("api_url").String()
	}

	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		c.Token = t
	}
	if c.Token == "" {
		return c, ErrMissingToken
	}
	return c, nil
}
