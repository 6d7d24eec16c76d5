// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

type mockScheduler struct {
	mu     sync.Mutex
	events []ReadyEvent
	err    error
}

func (m *mockScheduler) Schedule(ctx context.Context, event ReadyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockScheduler) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func newTestPipeline(scheduler Scheduler) (*Notifier, *Dispatcher, *Bus) {
	bus := NewBus(watermill.NopLogger{})
	dispatcher := NewDispatcher(zerolog.Nop(), bus, scheduler)
	notifier := NewNotifier(zerolog.Nop(), bus, dispatcher)
	return notifier, dispatcher, bus
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatchLifecycle(t *testing.T) {
	scheduler := &mockScheduler{}
	notifier, dispatcher, bus := newTestPipeline(scheduler)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := dispatcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	go dispatcher.Serve(ctx) //nolint:errcheck

	if got := dispatcher.State("alice"); got != StateIdle {
		t.Fatalf("initial state = %v, want idle", got)
	}

	event := ReadyEvent{UserID: "alice", Recommendations: 3, StyleMatch: 82}
	if err := notifier.RecommendationReady(ctx, event); err != nil {
		t.Fatalf("RecommendationReady: %v", err)
	}

	waitFor(t, func() bool { return dispatcher.State("alice") == StateDispatched })

	if scheduler.count() != 1 {
		t.Fatalf("scheduled events = %d, want 1", scheduler.count())
	}
	scheduler.mu.Lock()
	got := scheduler.events[0]
	scheduler.mu.Unlock()
	if got.UserID != "alice" || got.Recommendations != 3 || got.StyleMatch != 82 {
		t.Errorf("event = %+v", got)
	}
	if got.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be filled on publish")
	}
}

func TestDispatchFailureReturnsToIdle(t *testing.T) {
	scheduler := &mockScheduler{err: errors.New("scheduler down")}
	notifier, dispatcher, bus := newTestPipeline(scheduler)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := dispatcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	go dispatcher.Serve(ctx) //nolint:errcheck

	if err := notifier.RecommendationReady(ctx, ReadyEvent{UserID: "alice"}); err != nil {
		t.Fatalf("RecommendationReady: %v", err)
	}

	waitFor(t, func() bool { return dispatcher.State("alice") == StateIdle })

	if scheduler.count() != 0 {
		t.Errorf("failed schedule recorded %d events", scheduler.count())
	}
}

func TestRecommendationReadyRequiresUser(t *testing.T) {
	notifier, _, bus := newTestPipeline(&mockScheduler{})
	defer bus.Close()

	if err := notifier.RecommendationReady(context.Background(), ReadyEvent{}); err == nil {
		t.Error("expected error for missing user id")
	}
}
