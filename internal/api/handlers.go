// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/engine"
	"github.com/outfitd/outfitd/internal/feedback"
	"github.com/outfitd/outfitd/internal/notify"
	"github.com/outfitd/outfitd/internal/resilience"
	"github.com/outfitd/outfitd/internal/wardrobe"
)

// WardrobeAdmin is the write side of the wardrobe store, exposed on the
// admin endpoints.
type WardrobeAdmin interface {
	wardrobe.Store
	PutItem(ctx context.Context, userID string, item *wardrobe.Item) error
	DeleteItem(ctx context.Context, userID, itemID string) error
}

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	logger     zerolog.Logger
	aggregator *aggregator.Aggregator
	engine     *engine.Engine
	learner    *feedback.Learner
	notifier   *notify.Notifier
	executor   *resilience.Executor
	wardrobe   WardrobeAdmin
	validate   *validator.Validate
}

// NewHandlers creates the handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandlers(
	logger zerolog.Logger,
	agg *aggregator.Aggregator,
	eng *engine.Engine,
	learner *feedback.Learner,
	notifier *notify.Notifier,
	executor *resilience.Executor,
	wardrobeStore WardrobeAdmin,
) *Handlers {
	return &Handlers{
		logger:     logger.With().Str("component", "api").Logger(),
		aggregator: agg,
		engine:     eng,
		learner:    learner,
		notifier:   notifier,
		executor:   executor,
		wardrobe:   wardrobeStore,
		validate:   validator.New(),
	}
}

// recommendationResponse wraps the engine result for the wire.
type recommendationResponse struct {
	UserID string         `json:"user_id"`
	Date   string         `json:"date"`
	Result *engine.Result `json:"result"`
}

// Recommendations handles GET /api/v1/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	location := q.Get("location")

	date := time.Now()
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	rc, err := h.aggregator.BuildContext(r.Context(), userID, date, location)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	result, err := h.engine.Recommend(r.Context(), rc)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if len(result.Recommendations) > 0 && h.notifier != nil {
		event := notify.ReadyEvent{
			UserID:          userID,
			Date:            date,
			Recommendations: len(result.Recommendations),
			StyleMatch:      result.Recommendations[0].StyleMatch,
		}
		if err := h.notifier.RecommendationReady(r.Context(), event); err != nil {
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("ready event publish failed")
		}
	}

	h.writeJSON(w, http.StatusOK, recommendationResponse{
		UserID: userID,
		Date:   date.Format("2006-01-02"),
		Result: result,
	})
}

// Feedback handles POST /api/v1/feedback.
func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var event feedback.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.learner.ApplyFeedback(r.Context(), &event)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted", "profile": updated})
}

// ListItems handles GET /api/v1/wardrobe/{userID}/items.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	items, err := h.wardrobe.GetItems(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []wardrobe.Item{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "items": items})
}

// PutItem handles PUT /api/v1/wardrobe/{userID}/items/{itemID}.
func (h *Handlers) PutItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")

	var item wardrobe.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ID = itemID
	if err := item.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.wardrobe.PutItem(r.Context(), userID, &item); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/wardrobe/{userID}/items/{itemID}.
func (h *Handlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")

	if err := h.wardrobe.DeleteItem(r.Context(), userID, itemID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz, process liveness only.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyResponse reports circuit state per upstream service.
type readyResponse struct {
	Status   string            `json:"status"`
	Circuits map[string]string `json:"circuits"`
}

// Ready handles GET /readyz. The daemon stays ready while degraded,
// open circuits are reported but recommendations still flow through
// the fallback chains.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ok", Circuits: map[string]string{}}
	for service, state := range h.executor.States() {
		resp.Circuits[service] = state
		if state == "open" {
			resp.Status = "degraded"
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// writeDomainError maps domain errors onto HTTP status codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case resilience.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, resilience.ErrExhausted):
		h.writeError(w, http.StatusServiceUnavailable, "recommendation unavailable")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("response encoding failed")
	}
}
