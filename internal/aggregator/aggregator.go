// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package aggregator assembles the recommendation context from the four
// sources: weather, calendar, style profile, and wardrobe. Each source
// is fetched through the resilience layer with its own fallback chain;
// the assembled context records which tier served each source.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/calendar"
	"github.com/outfitd/outfitd/internal/profile"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/wardrobe"
	"github.com/outfitd/outfitd/internal/weather"
)

// DefaultBuildTimeout bounds a full context assembly.
const DefaultBuildTimeout = 3 * time.Second

// SourceTiers records the degradation tier each source was served at.
type SourceTiers struct {
	Weather  resilience.DegradationLevel `json:"weather"`
	Calendar resilience.DegradationLevel `json:"calendar"`
	Profile  resilience.DegradationLevel `json:"profile"`
	Wardrobe resilience.DegradationLevel `json:"wardrobe"`
}

// Worst returns the most degraded tier across sources.
func (t SourceTiers) Worst() resilience.DegradationLevel {
	worst := t.Weather
	for _, tier := range []resilience.DegradationLevel{t.Calendar, t.Profile, t.Wardrobe} {
		if tier > worst {
			worst = tier
		}
	}
	return worst
}

// Context is the assembled recommendation context for one request.
type Context struct {
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`

	Weather  weather.Context       `json:"weather"`
	Calendar calendar.Context      `json:"calendar"`
	Profile  *profile.StyleProfile `json:"profile"`
	Wardrobe *wardrobe.Snapshot    `json:"-"`

	// Tiers records per-source degradation for the response and logs.
	Tiers SourceTiers `json:"tiers"`
}

// Config holds per-source resilience options and the overall deadline.
type Config struct {
	BuildTimeout time.Duration

	Weather  resilience.Options
	Calendar resilience.Options
	Profile  resilience.Options
	Wardrobe resilience.Options
}

// Aggregator builds recommendation contexts. The wardrobe is the only
// hard dependency: every other source degrades to a safe default, but
// without items there is nothing to recommend.
type Aggregator struct {
	logger   zerolog.Logger
	executor *resilience.Executor
	cfg      Config

	weatherProvider  weather.Provider
	weatherCache     *weather.Cache
	calendarProvider calendar.Provider
	profileStore     profile.Store
	wardrobeStore    wardrobe.Store

	// lastProfiles holds the last good profile per user, the cached
	// tier when the durable store is down.
	lastProfiles sync.Map
}

// New creates an Aggregator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(
	logger zerolog.Logger,
	executor *resilience.Executor,
	cfg Config,
	weatherProvider weather.Provider,
	weatherCache *weather.Cache,
	calendarProvider calendar.Provider,
	profileStore profile.Store,
	wardrobeStore wardrobe.Store,
) *Aggregator {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	return &Aggregator{
		logger:           logger.With().Str("component", "aggregator").Logger(),
		executor:         executor,
		cfg:              cfg,
		weatherProvider:  weatherProvider,
		weatherCache:     weatherCache,
		calendarProvider: calendarProvider,
		profileStore:     profileStore,
		wardrobeStore:    wardrobeStore,
	}
}

// BuildContext fetches all four sources concurrently and assembles the
// recommendation context. It fails only on invalid input or when the
// wardrobe cannot be read at all.
func (a *Aggregator) BuildContext(ctx context.Context, userID string, date time.Time, location string) (*Context, error) {
	if userID == "" {
		return nil, resilience.NewValidationError("user id is required")
	}
	if location == "" {
		return nil, resilience.NewValidationError("location is required")
	}
	if date.IsZero() {
		date = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.BuildTimeout)
	defer cancel()

	out := &Context{UserID: userID, Date: date, Location: location}

	var wg sync.WaitGroup
	var wardrobeErr error

	wg.Add(4)
	go func() {
		defer wg.Done()
		out.Weather, out.Tiers.Weather = a.fetchWeather(ctx, location, date)
	}()
	go func() {
		defer wg.Done()
		out.Calendar, out.Tiers.Calendar = a.fetchCalendar(ctx, userID, date)
	}()
	go func() {
		defer wg.Done()
		out.Profile, out.Tiers.Profile = a.fetchProfile(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		out.Wardrobe, out.Tiers.Wardrobe, wardrobeErr = a.fetchWardrobe(ctx, userID)
	}()
	wg.Wait()

	if wardrobeErr != nil {
		return nil, fmt.Errorf("wardrobe unavailable: %w", wardrobeErr)
	}

	a.logger.Debug().
		Str("user_id", userID).
		Str("location", location).
		Stringer("weather_tier", out.Tiers.Weather).
		Stringer("calendar_tier", out.Tiers.Calendar).
		Stringer("profile_tier", out.Tiers.Profile).
		Int("wardrobe_items", out.Wardrobe.Len()).
		Msg("context assembled")

	return out, nil
}

// fetchWeather runs the live -> cached -> seasonal chain. The cache is
// refreshed on live success and may serve stale readings as a fallback.
func (a *Aggregator) fetchWeather(ctx context.Context, location string, date time.Time) (weather.Context, resilience.DegradationLevel) {
	chain := []resilience.Fallback[weather.Context]{
		{
			Level: resilience.Cached,
			Produce: func(ctx context.Context) (weather.Context, error) {
				reading, _, ok := a.weatherCache.Get(location)
				if !ok {
					return weather.Context{}, fmt.Errorf("no cached reading for %s", location)
				}
				return reading, nil
			},
		},
		{
			Level: resilience.StaticDefault,
			Produce: func(ctx context.Context) (weather.Context, error) {
				return weather.SeasonalDefault(location, date), nil
			},
		},
	}

	reading, tier, err := resilience.Execute(ctx, a.executor, resilience.ServiceWeather,
		func(ctx context.Context) (weather.Context, error) {
			r, err := a.weatherProvider.GetWeather(ctx, location, date)
			if err != nil {
				return weather.Context{}, err
			}
			a.weatherCache.Put(location, r)
			return r, nil
		},
		chain, a.cfg.Weather)
	if err != nil {
		// chain ends at a static default, this is unreachable in
		// practice but the seasonal table is the honest answer
		a.logger.Error().Err(err).Msg("weather chain exhausted")
		return weather.SeasonalDefault(location, date), resilience.StaticDefault
	}
	return reading, tier
}

// fetchCalendar runs live -> empty-casual. An empty day is a valid
// context, so the chain never fails.
func (a *Aggregator) fetchCalendar(ctx context.Context, userID string, date time.Time) (calendar.Context, resilience.DegradationLevel) {
	chain := []resilience.Fallback[calendar.Context]{
		{
			Level: resilience.StaticDefault,
			Produce: func(ctx context.Context) (calendar.Context, error) {
				return calendar.EmptyContext(), nil
			},
		},
	}

	cal, tier, err := resilience.Execute(ctx, a.executor, resilience.ServiceCalendar,
		func(ctx context.Context) (calendar.Context, error) {
			events, err := a.calendarProvider.GetEvents(ctx, userID, date)
			if err != nil {
				return calendar.Context{}, err
			}
			return calendar.BuildContext(events), nil
		},
		chain, a.cfg.Calendar)
	if err != nil {
		a.logger.Error().Err(err).Msg("calendar chain exhausted")
		return calendar.EmptyContext(), resilience.StaticDefault
	}
	return cal, tier
}

// fetchProfile runs live -> last-good -> default. A user without a
// stored profile gets the default at the live tier, that is normal for
// new users, not degradation.
func (a *Aggregator) fetchProfile(ctx context.Context, userID string) (*profile.StyleProfile, resilience.DegradationLevel) {
	chain := []resilience.Fallback[*profile.StyleProfile]{
		{
			Level: resilience.Cached,
			Produce: func(ctx context.Context) (*profile.StyleProfile, error) {
				if cached, ok := a.lastProfiles.Load(userID); ok {
					return cached.(*profile.StyleProfile).Clone(), nil
				}
				return nil, fmt.Errorf("no cached profile for %s", userID)
			},
		},
		{
			Level: resilience.StaticDefault,
			Produce: func(ctx context.Context) (*profile.StyleProfile, error) {
				return profile.Default(userID), nil
			},
		},
	}

	p, tier, err := resilience.Execute(ctx, a.executor, resilience.ServiceProfile,
		func(ctx context.Context) (*profile.StyleProfile, error) {
			loaded, err := a.profileStore.LoadProfile(ctx, userID)
			if err != nil {
				if errors.Is(err, profile.ErrNotFound) {
					return profile.Default(userID), nil
				}
				return nil, err
			}
			a.lastProfiles.Store(userID, loaded.Clone())
			return loaded, nil
		},
		chain, a.cfg.Profile)
	if err != nil {
		a.logger.Error().Err(err).Msg("profile chain exhausted")
		return profile.Default(userID), resilience.StaticDefault
	}
	return p, tier
}

// fetchWardrobe has no fallback chain: a recommendation cannot be made
// without items, so failure here fails the request.
func (a *Aggregator) fetchWardrobe(ctx context.Context, userID string) (*wardrobe.Snapshot, resilience.DegradationLevel, error) {
	items, tier, err := resilience.Execute(ctx, a.executor, resilience.ServiceWardrobe,
		func(ctx context.Context) ([]wardrobe.Item, error) {
			return a.wardrobeStore.GetItems(ctx, userID)
		},
		nil, a.cfg.Wardrobe)
	if err != nil {
		return nil, resilience.Unavailable, err
	}
	return wardrobe.NewSnapshot(items, a.logger), tier, nil
}
