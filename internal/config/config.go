// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package config loads daemon configuration from layered sources with
// the precedence ENV > file > defaults, using Koanf v2.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "OUTFITD_CONFIG"

// envPrefix namespaces all environment overrides.
const envPrefix = "OUTFITD_"

// DefaultConfigPaths are searched in order when no explicit path is
// set.
var DefaultConfigPaths = []string{
	"outfitd.yaml",
	"config/outfitd.yaml",
	"/etc/outfitd/outfitd.yaml",
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       int           `koanf:"rate_limit"`
	RateWindow      time.Duration `koanf:"rate_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig holds the BadgerDB settings.
type StorageConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// ResilienceConfig tunes one service's retry, circuit, and rate-limit
// policy.
type ResilienceConfig struct {
	MaxRetries              int           `koanf:"max_retries"`
	BackoffBase             time.Duration `koanf:"backoff_base"`
	BackoffCap              time.Duration `koanf:"backoff_cap"`
	PerCallTimeout          time.Duration `koanf:"per_call_timeout"`
	CircuitFailureThreshold uint32        `koanf:"circuit_failure_threshold"`
	CircuitCooldown         time.Duration `koanf:"circuit_cooldown"`
	RateLimitPerSecond      float64       `koanf:"rate_limit_per_second"`
}

// EngineConfig holds the recommendation gates and weights.
type EngineConfig struct {
	ShortSleeveMinTempC    float64 `koanf:"short_sleeve_min_temp_c"`
	HeavyOuterwearMaxTempC float64 `koanf:"heavy_outerwear_max_temp_c"`
	OuterwearRequiredTempC float64 `koanf:"outerwear_required_temp_c"`
	FormalityStrict        bool    `koanf:"formality_strict"`
	NeglectThresholdDays   int     `koanf:"neglect_threshold_days"`
	DislikeThreshold       int     `koanf:"dislike_threshold"`
	NoteStyle              string  `koanf:"note_style"`
	MaxResults             int     `koanf:"max_results"`
	WeightCompatibility    float64 `koanf:"weight_compatibility"`
	WeightColorHarmony     float64 `koanf:"weight_color_harmony"`
	WeightNeglect          float64 `koanf:"weight_neglect"`
	WeightConfidence       float64 `koanf:"weight_confidence"`
}

// FeedbackConfig tunes the learner.
type FeedbackConfig struct {
	Alpha           float64       `koanf:"alpha"`
	DecayCycleLimit int           `koanf:"decay_cycle_limit"`
	FlushInterval   time.Duration `koanf:"flush_interval"`
}

// AggregatorConfig bounds context assembly.
type AggregatorConfig struct {
	BuildTimeout    time.Duration `koanf:"build_timeout"`
	WeatherCacheTTL time.Duration `koanf:"weather_cache_ttl"`
}

// ProviderConfig points at the external collaborators. Empty URLs fall
// back to built-in static providers.
type ProviderConfig struct {
	WeatherURL  string `koanf:"weather_url"`
	CalendarURL string `koanf:"calendar_url"`
}

// Config is the full daemon configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Storage    StorageConfig    `koanf:"storage"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Providers  ProviderConfig   `koanf:"providers"`
	Engine     EngineConfig     `koanf:"engine"`
	Feedback   FeedbackConfig   `koanf:"feedback"`

	Weather  ResilienceConfig `koanf:"weather"`
	Calendar ResilienceConfig `koanf:"calendar"`
	Profile  ResilienceConfig `koanf:"profile"`
	Wardrobe ResilienceConfig `koanf:"wardrobe"`
}

// defaultResilience is the per-service baseline.
func defaultResilience() ResilienceConfig {
	return ResilienceConfig{
		MaxRetries:              3,
		BackoffBase:             250 * time.Millisecond,
		BackoffCap:              10 * time.Second,
		PerCallTimeout:          5 * time.Second,
		CircuitFailureThreshold: 5,
		CircuitCooldown:         30 * time.Second,
	}
}

// defaultConfig returns the built-in defaults, layered under file and
// environment overrides.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       100,
			RateWindow:      time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Path: "data/outfitd",
		},
		Aggregator: AggregatorConfig{
			BuildTimeout:    time.Second,
			WeatherCacheTTL: 30 * time.Minute,
		},
		Engine: EngineConfig{
			ShortSleeveMinTempC:    15,
			HeavyOuterwearMaxTempC: 20,
			OuterwearRequiredTempC: 10,
			FormalityStrict:        true,
			NeglectThresholdDays:   30,
			DislikeThreshold:       3,
			NoteStyle:              "encouraging",
			MaxResults:             3,
			WeightCompatibility:    0.3,
			WeightColorHarmony:     0.3,
			WeightNeglect:          0.2,
			WeightConfidence:       0.2,
		},
		Feedback: FeedbackConfig{
			Alpha:           0.2,
			DecayCycleLimit: 5,
			FlushInterval:   30 * time.Second,
		},
		Weather:  defaultResilience(),
		Calendar: defaultResilience(),
		Profile:  defaultResilience(),
		Wardrobe: defaultResilience(),
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and OUTFITD_* environment variables, highest precedence last.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom loads with an explicit config file path; empty skips the
// file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// OUTFITD_SERVER_LISTEN_ADDR -> server.listen_addr
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		for _, section := range sectionNames {
			if strings.HasPrefix(s, section+"_") {
				return section + "." + strings.TrimPrefix(s, section+"_")
			}
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}
	return cfg, nil
}

// sectionNames map the first env token onto a config section.
var sectionNames = []string{
	"server", "logging", "storage", "aggregator", "providers", "engine",
	"feedback", "weather", "calendar", "profile", "wardrobe",
}

// findConfigFile returns the first existing config path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Storage.Path == "" && !c.Storage.InMemory {
		return fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}
	if c.Feedback.Alpha <= 0 || c.Feedback.Alpha > 1 {
		return fmt.Errorf("feedback.alpha must be in (0,1], got %v", c.Feedback.Alpha)
	}
	if c.Engine.MaxResults < 1 {
		return fmt.Errorf("engine.max_results must be at least 1")
	}
	sum := c.Engine.WeightCompatibility + c.Engine.WeightColorHarmony +
		c.Engine.WeightNeglect + c.Engine.WeightConfidence
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("engine weights must sum to 1, got %v", sum)
	}
	for name, rc := range map[string]ResilienceConfig{
		"weather": c.Weather, "calendar": c.Calendar,
		"profile": c.Profile, "wardrobe": c.Wardrobe,
	} {
		if rc.CircuitFailureThreshold == 0 {
			return fmt.Errorf("%s.circuit_failure_threshold must be positive", name)
		}
	}
	return nil
}
