package server

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server needs to start. Values come from the
// environment via FromEnv; main applies flag overrides on top.
type Config struct {
	Port         uint16
	MapPath      string
	MaxClients   int
	TickInterval time.Duration
	DebugAddr    string
}

func DefaultConfig() Config {
	return Config{
		Port:         6969,
		MapPath:      "maps/default.map",
		MaxClients:   12,
		TickInterval: 16 * time.Millisecond,
		DebugAddr:    ":6970",
	}
}

// FromEnv builds a config from PIWPEW_* variables, falling back to defaults
// for anything unset or unparsable.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v, ok := envInt("PIWPEW_PORT"); ok && v > 0 && v < 1<<16 {
		cfg.Port = uint16(v)
	}
	if v := os.Getenv("PIWPEW_MAP"); v != "" {
		cfg.MapPath = v
	}
	if v, ok := envInt("PIWPEW_MAX_CLIENTS"); ok && v > 0 {
		cfg.MaxClients = v
	}
	if v, ok := envInt("PIWPEW_TICK_MS"); ok && v > 0 {
		cfg.TickInterval = time.Duration(v) * time.Millisecond
	}
	if v := os.Getenv("PIWPEW_DEBUG_ADDR"); v != "" {
		cfg.DebugAddr = v
	}
	return cfg
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
