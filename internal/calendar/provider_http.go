// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// HTTPProvider fetches events from a JSON calendar endpoint:
// GET {base}?user_id=X&date=YYYY-MM-DD returning {"events": [...]}.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates an HTTP-backed calendar provider.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// GetEvents implements Provider.
func (p *HTTPProvider) GetEvents(ctx context.Context, userID string, date time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar provider returned %d", resp.StatusCode)
	}

	var body struct {
		Events []Event `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}
	return body.Events, nil
}

// StaticProvider reports an empty day, for deployments without a
// calendar endpoint.
type StaticProvider struct{}

// GetEvents implements Provider.
func (StaticProvider) GetEvents(ctx context.Context, userID string, date time.Time) ([]Event, error) {
	return nil, nil
}
