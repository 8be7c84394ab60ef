package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mini-echo/protocol"
)

// Config holds the server's runtime settings, assembled from defaults, an
// optional TOML file, and command line flags (highest precedence).
type Config struct {
	Addr           string
	LogLevel       string
	RateLimit      float64
	RateBurst      int
	HandlerTimeout time.Duration
	Registry       []string
	Advertise      string
	Weight         int
	MetricsAddr    string
	Lines          bool
}

func defaultConfig() Config {
	return Config{
		Addr:      protocol.DefaultServerAddr,
		LogLevel:  "info",
		RateBurst: 1,
		Weight:    1,
	}
}

// config.toml key mapping to server runtime settings.
type fileConfig struct {
	Addr           string   `toml:"addr"`
	LogLevel       string   `toml:"log_level"`
	RateLimit      float64  `toml:"rate_limit"`
	RateBurst      int      `toml:"rate_burst"`
	HandlerTimeout string   `toml:"handler_timeout"`
	Registry       []string `toml:"registry"`
	Advertise      string   `toml:"advertise"`
	Weight         int      `toml:"weight"`
	MetricsAddr    string   `toml:"metrics_addr"`
	Lines          bool     `toml:"lines"`
}

// applyFile overlays values defined in the TOML file at path onto cfg.
// Keys absent from the file leave cfg untouched.
func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("rate_limit") {
		cfg.RateLimit = raw.RateLimit
	}
	if meta.IsDefined("rate_burst") {
		cfg.RateBurst = raw.RateBurst
	}
	if meta.IsDefined("handler_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HandlerTimeout))
		if err != nil {
			return fmt.Errorf("load config: handler_timeout: %w", err)
		}
		cfg.HandlerTimeout = d
	}
	if meta.IsDefined("registry") {
		cfg.Registry = raw.Registry
	}
	if meta.IsDefined("advertise") {
		cfg.Advertise = strings.TrimSpace(raw.Advertise)
	}
	if meta.IsDefined("weight") {
		cfg.Weight = raw.Weight
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("lines") {
		cfg.Lines = raw.Lines
	}
	return nil
}
