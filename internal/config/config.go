package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DevSecret signs tokens when neither the config file nor ECOQUIZ_JWT_SECRET sets one.
const DevSecret = "ecoquiz-dev-secret"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Store struct {
		Backend string `yaml:"backend"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Items struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"items"`
}

// Load reads YAML config from path. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
		if c.Postgres.URL != "" {
			c.Store.Backend = "postgres"
		}
	}
	if secret := os.Getenv("ECOQUIZ_JWT_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
	if c.Auth.Secret == "" {
		c.Auth.Secret = DevSecret
	}
}

// UsesPostgres reports whether the persistent stores are backed by Postgres.
func (c Config) UsesPostgres() bool {
	return c.Store.Backend == "postgres"
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
