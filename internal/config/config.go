package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"quizbuzzer/internal/buzz"
	"quizbuzzer/internal/session"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             string
	DatabaseURL      string
	NATSURL          string
	NATSSubject      string
	RoomDefaultsFile string
	LogLevel         string
	TickInterval     time.Duration
	RoomIdleTTL      time.Duration
	AllowedOrigins   []string
}

// LoadDotEnv reads a .env file from the working directory if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}
}

func Load() Config {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		NATSURL:          os.Getenv("NATS_URL"),
		NATSSubject:      getEnv("NATS_SUBJECT", "quizbuzzer"),
		RoomDefaultsFile: os.Getenv("ROOM_DEFAULTS_FILE"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TickInterval:     time.Duration(getEnvInt("TIMER_TICK_MS", 250)) * time.Millisecond,
		RoomIdleTTL:      time.Duration(getEnvInt("ROOM_IDLE_MINUTES", 30)) * time.Minute,
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
	return cfg
}

// LoadRoomDefaults reads per-process room defaults from a YAML file. Keys
// missing from the file keep their built-in default; an empty path yields
// the built-in defaults.
func LoadRoomDefaults(path string) (session.Settings, error) {
	settings := session.DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read room defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return session.DefaultSettings(), fmt.Errorf("failed to parse room defaults: %w", err)
	}
	settings.BuzzMode = buzz.ParseMode(string(settings.BuzzMode))
	if settings.MCOptionCount <= 0 {
		settings.MCOptionCount = session.DefaultSettings().MCOptionCount
	}
	return settings, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
