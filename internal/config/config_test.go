package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  port: "9000"
log:
  level: debug
redis:
  addr: localhost:6379
  ttl: 30m
quiz:
  questions_dir: ./questions
  strict_choices: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_REDIS_ADDR", "redis:6380")
	t.Setenv("QUIZ_DEFAULT_SET", "capitals")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port from yaml, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env override for redis addr, got %q", cfg.Redis.Addr)
	}
	if cfg.Quiz.DefaultSet != "capitals" || !cfg.Quiz.StrictChoices || cfg.Quiz.QuestionsDir != "./questions" {
		t.Fatalf("unexpected quiz section %+v", cfg.Quiz)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", got)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %s", cfg.Log.SlogLevel())
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("QUIZ_PORT", "7070")
	t.Setenv("QUIZ_SESSION_TTL", "45m")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port, got %q", cfg.Server.Port)
	}
	if got := cfg.SessionIdle(); got != 45*time.Minute {
		t.Fatalf("expected session idle from env, got %s", got)
	}
}

func TestSessionIdleFallsBackToRedisTTL(t *testing.T) {
	cfg := Config{Redis: RedisConfig{TTL: "20m"}}
	if got := cfg.SessionIdle(); got != 20*time.Minute {
		t.Fatalf("expected redis ttl, got %s", got)
	}
	if got := (Config{}).SessionIdle(); got != 30*time.Minute {
		t.Fatalf("expected 30m default, got %s", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("soon", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected fallback for garbage, got %s", got)
	}
}

func TestLogDefaults(t *testing.T) {
	var l LogConfig
	if l.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info by default")
	}
	if !l.JSON() {
		t.Fatalf("expected json by default")
	}
	if (LogConfig{Format: "TEXT"}).JSON() {
		t.Fatalf("expected text format")
	}
}
