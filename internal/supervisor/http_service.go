// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPService wraps an http.Server as a suture service with graceful
// shutdown.
type HTTPService struct {
	logger          zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService creates the supervised HTTP server service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPService(logger zerolog.Logger, server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		logger:          logger.With().Str("component", "http").Logger(),
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service: run the server until the context
// ends, then shut down gracefully.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("graceful shutdown failed, closing")
		_ = s.server.Close()
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *HTTPService) String() string {
	return "http-server"
}
