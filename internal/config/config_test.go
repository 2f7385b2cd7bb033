package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/session"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "NATS_URL", "NATS_SUBJECT", "LOG_LEVEL", "TIMER_TICK_MS", "ROOM_IDLE_MINUTES", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" || cfg.NATSURL != "" {
		t.Errorf("optional URLs should be empty, got %q %q", cfg.DatabaseURL, cfg.NATSURL)
	}
	if cfg.NATSSubject != "quizbuzzer" {
		t.Errorf("NATSSubject = %q, want %q", cfg.NATSSubject, "quizbuzzer")
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", cfg.TickInterval)
	}
	if cfg.RoomIdleTTL != 30*time.Minute {
		t.Errorf("RoomIdleTTL = %v, want 30m", cfg.RoomIdleTTL)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/quizbuzzer")
	t.Setenv("TIMER_TICK_MS", "100")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/quizbuzzer" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cfg.TickInterval)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("TIMER_TICK_MS", "abc")
	t.Setenv("ROOM_IDLE_MINUTES", "-5")

	cfg := Load()

	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want fallback", cfg.TickInterval)
	}
	if cfg.RoomIdleTTL != 30*time.Minute {
		t.Errorf("RoomIdleTTL = %v, want fallback", cfg.RoomIdleTTL)
	}
}

func TestLoadRoomDefaults_EmptyPath(t *testing.T) {
	got, err := LoadRoomDefaults("")
	if err != nil {
		t.Fatal(err)
	}
	if got != session.DefaultSettings() {
		t.Errorf("LoadRoomDefaults(\"\") = %+v, want defaults", got)
	}
}

func TestLoadRoomDefaults_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	body := "pointsRight: 50\npointsWrong: -25\nbuzzMode: MULTI\nmcOptionCount: 0\ntimerAutoBuzz: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadRoomDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.PointsRight != 50 || got.PointsWrong != -25 {
		t.Errorf("points = %d/%d, want 50/-25", got.PointsRight, got.PointsWrong)
	}
	if got.BuzzMode != buzz.ModeMulti {
		t.Errorf("BuzzMode = %q, want multi", got.BuzzMode)
	}
	if got.MCOptionCount != 4 {
		t.Errorf("MCOptionCount = %d, want default 4", got.MCOptionCount)
	}
	if !got.ShowPoints || !got.TimerStopOnBuzz || !got.TimerAutoBuzz {
		t.Errorf("unset keys should keep defaults: %+v", got)
	}
}

func TestLoadRoomDefaults_Errors(t *testing.T) {
	if _, err := LoadRoomDefaults(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("pointsRight: [oops"), 0o600)
	if _, err := LoadRoomDefaults(path); err == nil {
		t.Error("malformed yaml should fail")
	}
}
