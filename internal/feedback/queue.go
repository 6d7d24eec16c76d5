// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/metrics"
	"github.com/outfitd/outfitd/internal/profile"
)

// PendingQueue holds profiles whose save failed, latest version per
// user. The flush worker drains it once the store recovers.
type PendingQueue struct {
	mu       sync.Mutex
	profiles map[string]*profile.StyleProfile
}

// NewPendingQueue creates an empty queue.
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{profiles: make(map[string]*profile.StyleProfile)}
}

// Enqueue stores the latest unsaved profile for a user, replacing any
// earlier version.
func (q *PendingQueue) Enqueue(p *profile.StyleProfile) {
	q.mu.Lock()
	q.profiles[p.UserID] = p.Clone()
	size := len(q.profiles)
	q.mu.Unlock()

	metrics.FeedbackPendingWrites.Set(float64(size))
}

// Peek returns a copy of the pending profile for a user, if any.
func (q *PendingQueue) Peek(userID string) (*profile.StyleProfile, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	p, ok := q.profiles[userID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Remove drops the pending entry for a user.
func (q *PendingQueue) Remove(userID string) {
	q.mu.Lock()
	delete(q.profiles, userID)
	size := len(q.profiles)
	q.mu.Unlock()

	metrics.FeedbackPendingWrites.Set(float64(size))
}

// Len returns the number of users with pending saves.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.profiles)
}

// snapshot copies the queue for a flush pass.
func (q *PendingQueue) snapshot() []*profile.StyleProfile {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*profile.StyleProfile, 0, len(q.profiles))
	for _, p := range q.profiles {
		out = append(out, p.Clone())
	}
	return out
}

// FlushWorker retries pending profile saves in the background. It runs
// as a supervised service.
type FlushWorker struct {
	logger   zerolog.Logger
	store    profile.Store
	queue    *PendingQueue
	interval time.Duration
}

// NewFlushWorker creates a FlushWorker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFlushWorker(logger zerolog.Logger, store profile.Store, queue *PendingQueue, interval time.Duration) *FlushWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &FlushWorker{
		logger:   logger.With().Str("component", "feedback_flush").Logger(),
		store:    store,
		queue:    queue,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (w *FlushWorker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush attempts to save every pending profile. Entries that save are
// removed; failures stay queued for the next pass.
func (w *FlushWorker) Flush(ctx context.Context) {
	pending := w.queue.snapshot()
	if len(pending) == 0 {
		return
	}

	flushed := 0
	for _, p := range pending {
		if err := w.store.SaveProfile(ctx, p); err != nil {
			w.logger.Debug().Err(err).Str("user_id", p.UserID).
				Msg("pending profile save still failing")
			continue
		}
		w.queue.Remove(p.UserID)
		flushed++
	}

	if flushed > 0 {
		w.logger.Info().Int("flushed", flushed).Int("remaining", w.queue.Len()).
			Msg("pending profile saves flushed")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (w *FlushWorker) String() string {
	return "feedback-flush-worker"
}
