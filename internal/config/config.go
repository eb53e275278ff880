package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Challenge struct {
		Timezone string `yaml:"timezone"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"challenge"`
	Leaderboard struct {
		DefaultLimit int `yaml:"default_limit"`
		LiveTop      int `yaml:"live_top"`
	} `yaml:"leaderboard"`
	Auth struct {
		HMACSecret  string   `yaml:"hmac_secret"`
		Issuer      string   `yaml:"issuer"`
		AdminEmails []string `yaml:"admin_emails"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"log"`
}

// Load reads YAML config from path and fills defaults for unset fields.
// AUTH_HMAC_SECRET, when set, overrides the file's secret.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if secret := os.Getenv("AUTH_HMAC_SECRET"); secret != "" {
		cfg.Auth.HMACSecret = secret
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Challenge.Timezone == "" {
		c.Challenge.Timezone = "America/Los_Angeles"
	}
	if c.Leaderboard.DefaultLimit <= 0 {
		c.Leaderboard.DefaultLimit = 20
	}
	if c.Leaderboard.LiveTop <= 0 {
		c.Leaderboard.LiveTop = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
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
