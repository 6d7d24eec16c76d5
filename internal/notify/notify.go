// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package notify decouples recommendation production from notification
// delivery. Ready events flow through an in-process message bus to a
// dispatcher that drives an explicit per-user state machine
// (idle -> pending -> dispatched) and hands off to the external
// scheduler.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/metrics"
)

// TopicRecommendationReady carries ready events on the bus.
const TopicRecommendationReady = "recommendation.ready"

// State is the per-user notification state.
type State int

const (
	// StateIdle means no notification is in flight.
	StateIdle State = iota
	// StatePending means a ready event is published but not yet
	// handed to the scheduler.
	StatePending
	// StateDispatched means the scheduler accepted the notification.
	StateDispatched
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateDispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// ReadyEvent announces that recommendations are ready for a user.
type ReadyEvent struct {
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	Recommendations int       `json:"recommendations"`
	StyleMatch      int       `json:"style_match"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Scheduler is the external notification collaborator.
type Scheduler interface {
	// Schedule delivers one ready notification. Failures leave the user
	// pending for the next recommendation cycle.
	Schedule(ctx context.Context, event ReadyEvent) error
}

// Bus is the in-process pub/sub channel between the recommendation
// path and the dispatcher.
type Bus struct {
	channel *gochannel.GoChannel
}

// NewBus creates the in-process bus.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// Close shuts the bus down.
func (b *Bus) Close() error {
	return b.channel.Close()
}

// Notifier publishes ready events.
type Notifier struct {
	logger zerolog.Logger
	bus    *Bus
	states *stateTracker
}

// NewNotifier creates a Notifier sharing the dispatcher's state
// tracker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNotifier(logger zerolog.Logger, bus *Bus, d *Dispatcher) *Notifier {
	return &Notifier{
		logger: logger.With().Str("component", "notifier").Logger(),
		bus:    bus,
		states: d.states,
	}
}

// RecommendationReady publishes a ready event and marks the user
// pending.
func (n *Notifier) RecommendationReady(ctx context.Context, event ReadyEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("ready event missing user id")
	}
	if event.GeneratedAt.IsZero() {
		event.GeneratedAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ready event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := n.bus.channel.Publish(TopicRecommendationReady, msg); err != nil {
		return fmt.Errorf("publish ready event: %w", err)
	}

	n.states.set(event.UserID, StatePending)
	n.logger.Debug().Str("user_id", event.UserID).Msg("ready event published")
	return nil
}

// stateTracker holds per-user notification states.
type stateTracker struct {
	mu     sync.RWMutex
	states map[string]State
}

func newStateTracker() *stateTracker {
	return &stateTracker{states: make(map[string]State)}
}

func (t *stateTracker) set(userID string, s State) {
	t.mu.Lock()
	t.states[userID] = s
	t.mu.Unlock()
}

func (t *stateTracker) get(userID string) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[userID]
}

// Dispatcher consumes ready events and hands them to the scheduler. It
// runs as a supervised service.
type Dispatcher struct {
	logger    zerolog.Logger
	bus       *Bus
	scheduler Scheduler
	states    *stateTracker
	messages  <-chan *message.Message
}

// NewDispatcher creates a Dispatcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDispatcher(logger zerolog.Logger, bus *Bus, scheduler Scheduler) *Dispatcher {
	return &Dispatcher{
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		bus:       bus,
		scheduler: scheduler,
		states:    newStateTracker(),
	}
}

// State returns the notification state for a user.
func (d *Dispatcher) State(userID string) State {
	return d.states.get(userID)
}

// Start subscribes to the ready topic. Call before publishing so no
// event is lost between startup and the first Serve loop.
func (d *Dispatcher) Start(ctx context.Context) error {
	messages, err := d.bus.channel.Subscribe(ctx, TopicRecommendationReady)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicRecommendationReady, err)
	}
	d.messages = messages
	return nil
}

// Serve implements suture.Service: dispatch until the context ends.
func (d *Dispatcher) Serve(ctx context.Context) error {
	if d.messages == nil {
		if err := d.Start(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-d.messages:
			if !ok {
				d.messages = nil
				return fmt.Errorf("ready subscription closed")
			}
			d.handle(ctx, msg)
		}
	}
}

// handle processes one ready event. Scheduler failure returns the user
// to idle; the next recommendation cycle republishes.
func (d *Dispatcher) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var event ReadyEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		d.logger.Error().Err(err).Str("message_id", msg.UUID).
			Msg("dropping malformed ready event")
		return
	}

	if err := d.scheduler.Schedule(ctx, event); err != nil {
		d.states.set(event.UserID, StateIdle)
		d.logger.Warn().Err(err).Str("user_id", event.UserID).
			Msg("notification scheduling failed")
		return
	}

	d.states.set(event.UserID, StateDispatched)
	metrics.NotificationsDispatched.Inc()
	d.logger.Info().Str("user_id", event.UserID).
		Int("recommendations", event.Recommendations).
		Msg("notification dispatched")
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string {
	return "notification-dispatcher"
}
