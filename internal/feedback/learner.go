// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package feedback applies outfit ratings to style profiles. Pair
// weights move by exponential moving average toward the normalized
// rating, repeated low ratings accumulate into disliked patterns, and
// failed persists are queued for a background flush instead of failing
// the request.
package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/metrics"
	"github.com/outfitd/outfitd/internal/profile"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/wardrobe"
)

// maxRating is the top of the rating scale.
const maxRating = 5.0

// Config tunes the learner.
type Config struct {
	// Alpha is the EWMA learning rate in (0,1].
	Alpha float64 `koanf:"alpha"`

	// DecayCycleLimit is how many feedback rounds without reinforcement
	// erode one occurrence from a disliked pattern.
	DecayCycleLimit int `koanf:"decay_cycle_limit"`

	// Persist holds the resilience options for profile saves.
	Persist resilience.Options `koanf:"-"`
}

func (c Config) withDefaults() Config {
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = 0.2
	}
	if c.DecayCycleLimit <= 0 {
		c.DecayCycleLimit = 5
	}
	return c
}

// Event is one piece of user feedback about a recommended outfit.
type Event struct {
	// UserID is the rating user.
	UserID string `json:"user_id" validate:"required"`

	// ItemIDs lists the rated outfit's items.
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`

	// Rating is the outfit rating on a 1-5 scale.
	Rating float64 `json:"rating" validate:"required,min=1,max=5"`

	// EmotionalResponse optionally refines the rating ("confident",
	// "uncomfortable").
	EmotionalResponse string `json:"emotional_response,omitempty"`

	// OccurredAt is when the feedback was given.
	OccurredAt time.Time `json:"occurred_at"`
}

// positiveResponses nudge the effective rating up, negative ones down.
var (
	positiveResponses = map[string]bool{
		"confident":   true,
		"comfortable": true,
		"happy":       true,
		"great":       true,
	}
	negativeResponses = map[string]bool{
		"uncomfortable":  true,
		"awkward":        true,
		"self-conscious": true,
	}
)

// Learner applies feedback events to style profiles.
type Learner struct {
	logger   zerolog.Logger
	cfg      Config
	store    profile.Store
	wardrobe wardrobe.Store
	executor *resilience.Executor
	pending  *PendingQueue
}

// NewLearner creates a Learner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLearner(
	logger zerolog.Logger,
	cfg Config,
	store profile.Store,
	wardrobeStore wardrobe.Store,
	executor *resilience.Executor,
	pending *PendingQueue,
) *Learner {
	return &Learner{
		logger:   logger.With().Str("component", "feedback").Logger(),
		cfg:      cfg.withDefaults(),
		store:    store,
		wardrobe: wardrobeStore,
		executor: executor,
		pending:  pending,
	}
}

// ApplyFeedback validates the event, updates the user's profile,
// persists it, and returns the updated profile so the current session
// sees the new weights without a reload. A failed persist queues the
// profile for the background flusher rather than failing the call.
func (l *Learner) ApplyFeedback(ctx context.Context, event *Event) (*profile.StyleProfile, error) {
	if err := l.validate(event); err != nil {
		return nil, err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	p, err := l.loadProfile(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	items := l.resolveItems(ctx, event)
	rating := l.effectiveRating(event)

	l.updatePairWeights(p, event.ItemIDs, rating)
	l.updateComboRatings(p, items, rating)
	l.updateDislikedPatterns(p, items, rating, event.OccurredAt)
	p.UpdatedAt = event.OccurredAt

	metrics.FeedbackApplied.Inc()

	if err := l.persist(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Learner) validate(event *Event) error {
	if event == nil {
		return resilience.NewValidationError("feedback event is required")
	}
	if event.UserID == "" {
		return resilience.NewValidationError("user id is required")
	}
	if len(event.ItemIDs) == 0 {
		return resilience.NewValidationError("item ids are required")
	}
	if event.Rating < 1 || event.Rating > maxRating {
		return resilience.NewValidationError("rating %v out of range [1,%v]", event.Rating, maxRating)
	}
	return nil
}

// loadProfile prefers a pending unsaved copy, then the store, then a
// fresh default for new users.
func (l *Learner) loadProfile(ctx context.Context, userID string) (*profile.StyleProfile, error) {
	if queued, ok := l.pending.Peek(userID); ok {
		return queued, nil
	}

	p, err := l.store.LoadProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Default(userID), nil
		}
		return nil, err
	}
	return p, nil
}

// resolveItems maps the event's item IDs onto wardrobe items so tag
// combinations can be learned. Unknown IDs are skipped, pair weights
// still learn from the raw IDs.
func (l *Learner) resolveItems(ctx context.Context, event *Event) []wardrobe.Item {
	all, err := l.wardrobe.GetItems(ctx, event.UserID)
	if err != nil {
		l.logger.Warn().Err(err).Str("user_id", event.UserID).
			Msg("wardrobe unavailable during feedback, learning from item ids only")
		return nil
	}

	byID := make(map[string]wardrobe.Item, len(all))
	for _, item := range all {
		byID[item.ID] = item
	}

	var items []wardrobe.Item
	for _, id := range event.ItemIDs {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// effectiveRating adjusts the numeric rating by the emotional response,
// clamped to the rating scale.
func (l *Learner) effectiveRating(event *Event) float64 {
	rating := event.Rating
	response := strings.ToLower(strings.TrimSpace(event.EmotionalResponse))
	switch {
	case positiveResponses[response]:
		rating += 0.25
	case negativeResponses[response]:
		rating -= 0.25
	}
	if rating < 1 {
		rating = 1
	}
	if rating > maxRating {
		rating = maxRating
	}
	return rating
}

// updatePairWeights moves each item pair's weight toward the normalized
// rating by EWMA. Weights stay in [0,1] because both the prior and the
// target are.
func (l *Learner) updatePairWeights(p *profile.StyleProfile, itemIDs []string, rating float64) {
	target := rating / maxRating
	for i := 0; i < len(itemIDs); i++ {
		for j := i + 1; j < len(itemIDs); j++ {
			key := profile.PairKey(itemIDs[i], itemIDs[j])
			old, ok := p.CompatibilityWeights[key]
			if !ok {
				old = 0.5
			}
			p.CompatibilityWeights[key] = old + l.cfg.Alpha*(target-old)
		}
	}
}

// updateComboRatings learns tag-combination confidence the same way.
func (l *Learner) updateComboRatings(p *profile.StyleProfile, items []wardrobe.Item, rating float64) {
	target := rating / maxRating
	for _, key := range tagComboKeys(items) {
		old, ok := p.ComboRatings[key]
		if !ok {
			old = 0.5
		}
		p.ComboRatings[key] = old + l.cfg.Alpha*(target-old)
	}
}

// updateDislikedPatterns reinforces patterns on low ratings and decays
// unreinforced ones, removing patterns that erode to zero.
func (l *Learner) updateDislikedPatterns(p *profile.StyleProfile, items []wardrobe.Item, rating float64, now time.Time) {
	low := rating < p.ConfidenceThreshold
	reinforced := make(map[string]bool)

	if low {
		for _, key := range tagComboKeys(items) {
			pattern := p.DislikedPatterns[key]
			pattern.Occurrences++
			pattern.DecayCycles = 0
			pattern.LastSeen = now
			p.DislikedPatterns[key] = pattern
			reinforced[key] = true
		}
	}

	for key, pattern := range p.DislikedPatterns {
		if reinforced[key] {
			continue
		}
		pattern.DecayCycles++
		if pattern.DecayCycles >= l.cfg.DecayCycleLimit {
			pattern.Occurrences--
			pattern.DecayCycles = 0
		}
		if pattern.Occurrences <= 0 {
			delete(p.DislikedPatterns, key)
			continue
		}
		p.DislikedPatterns[key] = pattern
	}
}

// tagComboKeys returns the canonical pairwise tag combination keys
// across distinct items.
func tagComboKeys(items []wardrobe.Item) []string {
	seen := make(map[string]bool)
	var keys []string
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			for _, ta := range items[i].Tags {
				for _, tb := range items[j].Tags {
					key := profile.ComboKey(ta, tb)
					if key == "" || seen[key] {
						continue
					}
					seen[key] = true
					keys = append(keys, key)
				}
			}
		}
	}
	return keys
}

// persist saves through the resilience layer; on exhaustion the profile
// is queued for the background flusher.
func (l *Learner) persist(ctx context.Context, p *profile.StyleProfile) error {
	_, _, err := resilience.Execute(ctx, l.executor, resilience.ServiceProfile,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, l.store.SaveProfile(ctx, p)
		},
		nil, l.cfg.Persist)
	if err != nil {
		if resilience.IsValidation(err) {
			return err
		}
		l.logger.Warn().Err(err).Str("user_id", p.UserID).
			Msg("profile save failed, queued for background flush")
		l.pending.Enqueue(p)
		return nil
	}

	l.pending.Remove(p.UserID)
	return nil
}
