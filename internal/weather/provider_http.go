// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// HTTPProvider fetches readings from a JSON weather endpoint:
// GET {base}?location=X&date=YYYY-MM-DD returning a Context body.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates an HTTP-backed weather provider. Timeouts are
// enforced by the caller's context, the client itself has none.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// GetWeather implements Provider.
func (p *HTTPProvider) GetWeather(ctx context.Context, location string, date time.Time) (Context, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Context{}, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Context{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Context{}, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}

	var reading Context
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		return Context{}, fmt.Errorf("decode weather response: %w", err)
	}
	reading.Location = location
	reading.Date = date
	return reading, nil
}

// StaticProvider serves the seasonal table as if it were live, for
// deployments without a weather endpoint.
type StaticProvider struct{}

// GetWeather implements Provider.
func (StaticProvider) GetWeather(ctx context.Context, location string, date time.Time) (Context, error) {
	return SeasonalDefault(location, date), nil
}
