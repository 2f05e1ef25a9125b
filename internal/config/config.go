package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
	} `yaml:"server"`
	Log struct {
		Env   string `yaml:"env" env:"LOG_ENV"`
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Questions struct {
		TTL        string `yaml:"ttl" env:"QUESTIONS_TTL"`
		DefaultSet string `yaml:"default_set" env:"QUESTIONS_DEFAULT_SET"`
	} `yaml:"questions"`
	Game struct {
		QuestionSeconds int    `yaml:"question_seconds" env:"GAME_QUESTION_SECONDS"`
		RevealDelay     string `yaml:"reveal_delay" env:"GAME_REVEAL_DELAY"`
		SessionTTL      string `yaml:"session_ttl" env:"GAME_SESSION_TTL"`
	} `yaml:"game"`
	Auth struct {
		Secret   string `yaml:"secret" env:"AUTH_SECRET"`
		TokenTTL string `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	} `yaml:"auth"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; the service then runs on env and defaults only.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
