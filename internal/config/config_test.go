package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.TimetableSource != "json" {
		t.Fatalf("expected default timetable source json, got %s", cfg.TimetableSource)
	}
	if cfg.ChatHistoryLimit != 10 {
		t.Fatalf("expected default history limit 10, got %d", cfg.ChatHistoryLimit)
	}
	if cfg.ChatCooldown != 2*time.Second {
		t.Fatalf("expected default cooldown 2s, got %s", cfg.ChatCooldown)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("expected default LLM timeout 60s, got %s", cfg.LLMTimeout)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TIMETABLE_SOURCE", "postgres")
	t.Setenv("TIMETABLE_PATH", "/etc/classora/timetable.json")
	t.Setenv("LLM_TIMEOUT_SECONDS", "0")
	t.Setenv("CHAT_HISTORY_LIMIT", "15")
	t.Setenv("CHAT_COOLDOWN_MS", "500")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Fatalf("expected SERVER_PORT override, got %s", cfg.ServerPort)
	}
	if cfg.TimetableSource != "postgres" {
		t.Fatalf("expected TIMETABLE_SOURCE override, got %s", cfg.TimetableSource)
	}
	if cfg.TimetablePath != "/etc/classora/timetable.json" {
		t.Fatalf("expected TIMETABLE_PATH override, got %s", cfg.TimetablePath)
	}
	if cfg.LLMTimeout != 0 {
		t.Fatalf("expected LLM timeout disabled, got %s", cfg.LLMTimeout)
	}
	if cfg.ChatHistoryLimit != 15 {
		t.Fatalf("expected CHAT_HISTORY_LIMIT override, got %d", cfg.ChatHistoryLimit)
	}
	if cfg.ChatCooldown != 500*time.Millisecond {
		t.Fatalf("expected CHAT_COOLDOWN_MS override, got %s", cfg.ChatCooldown)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("CHAT_HISTORY_LIMIT", "not-a-number")

	cfg := Load()
	if cfg.ChatHistoryLimit != 10 {
		t.Fatalf("expected fallback history limit 10, got %d", cfg.ChatHistoryLimit)
	}
}

func TestStateKeys(t *testing.T) {
	if got := StateKey.ChatHistoryKey("u42"); got != "chat:u42:history" {
		t.Fatalf("unexpected history key %s", got)
	}
	if got := StateKey.ChatCooldownKey("u42"); got != "chat:u42:cooldown" {
		t.Fatalf("unexpected cooldown key %s", got)
	}
}
