package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"QUIZ_"`
	Log      LogConfig      `yaml:"log" envPrefix:"QUIZ_LOG_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"QUIZ_REDIS_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"QUIZ_POSTGRES_"`
	Quiz     QuizConfig     `yaml:"quiz" envPrefix:"QUIZ_"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	// TTL bounds how long an idle session survives in Redis.
	TTL string `yaml:"ttl" env:"TTL"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"URL"`
}

type QuizConfig struct {
	// TTL is how long a loaded question set stays cached.
	TTL           string `yaml:"ttl" env:"TTL"`
	QuestionsDir  string `yaml:"questions_dir" env:"QUESTIONS_DIR"`
	DefaultSet    string `yaml:"default_set" env:"DEFAULT_SET"`
	StrictChoices bool   `yaml:"strict_choices" env:"STRICT_CHOICES"`
	// SessionTTL is how long a session may sit idle before this process stops hosting it.
	// Empty falls back to redis.ttl.
	SessionTTL string `yaml:"session_ttl" env:"SESSION_TTL"`
}

// Load reads YAML config from path and applies QUIZ_* environment overrides. A missing file is
// not an error; the environment and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
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

// SessionIdle is the idle time after which hosted sessions are evicted.
func (c Config) SessionIdle() time.Duration {
	return TTLDuration(c.Quiz.SessionTTL, TTLDuration(c.Redis.TTL, 30*time.Minute))
}

// SlogLevel maps the configured level name to a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// JSON reports whether logs should be emitted as JSON rather than text.
func (c LogConfig) JSON() bool {
	return !strings.EqualFold(c.Format, "text")
}
