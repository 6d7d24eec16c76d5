// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package main is the entry point for the outfitd daemon.
//
// Outfitd recommends daily outfits from a user's wardrobe, blending
// live weather, calendar, and learned style preferences. Every external
// dependency is wrapped in a resilience layer (circuit breaker, bounded
// retry, fallback chain) so a recommendation is produced even when all
// collaborators are down.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered ENV > file > defaults
//  2. Logging: zerolog, JSON or console format
//  3. Storage: BadgerDB for wardrobe items and style profiles
//  4. Core: resilience executor, context aggregator, engine, learner
//  5. Messaging: in-process bus and notification dispatcher
//  6. Supervision: suture tree running workers, dispatcher, HTTP server
//
// The daemon shuts down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/time/rate"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/api"
	"github.com/outfitd/outfitd/internal/calendar"
	"github.com/outfitd/outfitd/internal/config"
	"github.com/outfitd/outfitd/internal/engine"
	"github.com/outfitd/outfitd/internal/feedback"
	"github.com/outfitd/outfitd/internal/logging"
	"github.com/outfitd/outfitd/internal/notify"
	"github.com/outfitd/outfitd/internal/profile"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/supervisor"
	"github.com/outfitd/outfitd/internal/wardrobe"
	"github.com/outfitd/outfitd/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "outfitd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().Str("listen_addr", cfg.Server.ListenAddr).Msg("starting outfitd")

	db, err := openBadger(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	executor := resilience.NewExecutor(logger)
	weatherCache := weather.NewCache(cfg.Aggregator.WeatherCacheTTL)
	wardrobeStore := wardrobe.NewBadgerStore(db)
	profileStore := profile.NewBadgerStore(db)

	agg := aggregator.New(
		logger,
		executor,
		aggregator.Config{
			BuildTimeout: cfg.Aggregator.BuildTimeout,
			Weather:      resilienceOptions(cfg.Weather),
			Calendar:     resilienceOptions(cfg.Calendar),
			Profile:      resilienceOptions(cfg.Profile),
			Wardrobe:     resilienceOptions(cfg.Wardrobe),
		},
		weatherProvider(cfg),
		weatherCache,
		calendarProvider(cfg),
		profileStore,
		wardrobeStore,
	)

	eng := engine.New(logger, engineConfig(cfg))

	pending := feedback.NewPendingQueue()
	learner := feedback.NewLearner(
		logger,
		feedback.Config{
			Alpha:           cfg.Feedback.Alpha,
			DecayCycleLimit: cfg.Feedback.DecayCycleLimit,
			Persist:         resilienceOptions(cfg.Profile),
		},
		profileStore,
		wardrobeStore,
		executor,
		pending,
	)

	bus := notify.NewBus(notify.NewWatermillLogger(logger))
	defer bus.Close()
	dispatcher := notify.NewDispatcher(logger, bus, logScheduler{})
	notifier := notify.NewNotifier(logger, bus, dispatcher)

	handlers := api.NewHandlers(logger, agg, eng, learner, notifier, executor, wardrobeStore)
	router := api.NewRouter(logger, handlers, api.RouterConfig{
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddWorker(feedback.NewFlushWorker(logger, profileStore, pending, cfg.Feedback.FlushInterval))
	tree.AddMessagingService(dispatcher)
	tree.AddAPIService(supervisor.NewHTTPService(logger, server, cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info().Msg("outfitd stopped")
	return nil
}

// openBadger opens the shared BadgerDB, in-memory when configured.
func openBadger(cfg *config.Config) (*badger.DB, error) {
	if cfg.Storage.InMemory {
		return badger.Open(badger.DefaultOptions("").WithInMemory(true))
	}
	return badger.Open(badger.DefaultOptions(cfg.Storage.Path))
}

// weatherProvider returns the configured provider, static when no URL
// is set.
func weatherProvider(cfg *config.Config) weather.Provider {
	if cfg.Providers.WeatherURL != "" {
		return weather.NewHTTPProvider(cfg.Providers.WeatherURL)
	}
	return weather.StaticProvider{}
}

// calendarProvider returns the configured provider, static when no URL
// is set.
func calendarProvider(cfg *config.Config) calendar.Provider {
	if cfg.Providers.CalendarURL != "" {
		return calendar.NewHTTPProvider(cfg.Providers.CalendarURL)
	}
	return calendar.StaticProvider{}
}

// resilienceOptions maps a config section onto executor options.
func resilienceOptions(rc config.ResilienceConfig) resilience.Options {
	return resilience.Options{
		MaxRetries:              rc.MaxRetries,
		BaseDelay:               rc.BackoffBase,
		MaxDelay:                rc.BackoffCap,
		PerCallTimeout:          rc.PerCallTimeout,
		CircuitFailureThreshold: rc.CircuitFailureThreshold,
		CircuitCooldown:         rc.CircuitCooldown,
		RateLimit:               rate.Limit(rc.RateLimitPerSecond),
	}
}

// engineConfig maps the config section onto the engine configuration.
func engineConfig(cfg *config.Config) engine.Config {
	noteStyle, err := engine.ParseNoteStyle(cfg.Engine.NoteStyle)
	if err != nil {
		noteStyle = engine.NoteEncouraging
	}
	return engine.Config{
		ShortSleeveMinTempC:    cfg.Engine.ShortSleeveMinTempC,
		HeavyOuterwearMaxTempC: cfg.Engine.HeavyOuterwearMaxTempC,
		OuterwearRequiredTempC: cfg.Engine.OuterwearRequiredTempC,
		FormalityStrict:        cfg.Engine.FormalityStrict,
		NeglectThresholdDays:   cfg.Engine.NeglectThresholdDays,
		DislikeThreshold:       cfg.Engine.DislikeThreshold,
		NoteStyle:              noteStyle,
		MaxResults:             cfg.Engine.MaxResults,
		Weights: engine.Weights{
			Compatibility: cfg.Engine.WeightCompatibility,
			ColorHarmony:  cfg.Engine.WeightColorHarmony,
			Neglect:       cfg.Engine.WeightNeglect,
			Confidence:    cfg.Engine.WeightConfidence,
		},
	}
}

// logScheduler is the default notification collaborator: it logs the
// ready event. Deployments integrate a real scheduler by replacing this
// implementation.
type logScheduler struct{}

// Schedule implements notify.Scheduler.
func (logScheduler) Schedule(ctx context.Context, event notify.ReadyEvent) error {
	logger := logging.Logger()
	logger.Info().
		Str("user_id", event.UserID).
		Int("recommendations", event.Recommendations).
		Int("style_match", event.StyleMatch).
		Msg("recommendation ready")
	return nil
}
