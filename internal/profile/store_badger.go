// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const profileKeyPrefix = "profile:"

// BadgerStore implements Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed profile store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// LoadProfile returns the stored profile for a user.
func (s *BadgerStore) LoadProfile(ctx context.Context, userID string) (*StyleProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p StyleProfile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	return &p, nil
}

// SaveProfile stores or replaces a profile.
func (s *BadgerStore) SaveProfile(ctx context.Context, p *StyleProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.UserID == "" {
		return fmt.Errorf("profile missing user id")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+p.UserID), data)
	})
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

// MemoryStore implements Store in memory, for tests and for degraded
// operation when the durable store is unavailable.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*StyleProfile
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*StyleProfile)}
}

// LoadProfile returns a copy of the stored profile for a user.
func (s *MemoryStore) LoadProfile(ctx context.Context, userID string) (*StyleProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// SaveProfile stores a copy of the profile.
func (s *MemoryStore) SaveProfile(ctx context.Context, p *StyleProfile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile missing user id")
	}

	s.mu.Lock()
	s.profiles[p.UserID] = p.Clone()
	s.mu.Unlock()
	return nil
}
