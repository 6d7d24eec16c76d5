// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package wardrobe

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// itemKeyPrefix namespaces wardrobe keys: wardrobe:<userID>:<itemID>.
const itemKeyPrefix = "wardrobe:"

// BadgerStore implements Store backed by BadgerDB, durable across
// restarts. Writes happen through wear/feedback events and the admin
// API; the recommendation core only reads.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed wardrobe store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// GetItems returns all wardrobe items for a user.
func (s *BadgerStore) GetItems(ctx context.Context, userID string) ([]Item, error) {
	prefix := []byte(itemKeyPrefix + userID + ":")
	var items []Item

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			err := it.Item().Value(func(val []byte) error {
				var item Item
				if err := json.Unmarshal(val, &item); err != nil {
					return fmt.Errorf("unmarshal item: %w", err)
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get wardrobe items: %w", err)
	}

	return items, nil
}

// PutItem stores or replaces a wardrobe item.
func (s *BadgerStore) PutItem(ctx context.Context, userID string, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	key := []byte(itemKeyPrefix + userID + ":" + item.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// DeleteItem removes a wardrobe item.
func (s *BadgerStore) DeleteItem(ctx context.Context, userID, itemID string) error {
	key := []byte(itemKeyPrefix + userID + ":" + itemID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}
