// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/trendora/trendora/internal/logging"
)

// Header names accepted on the webhook surface.
const (
	APIKeyHeader    = "x-api-key"
	SignatureHeader = "x-trendora-signature"
)

// Authenticator authorizes webhook and admin calls. Internal callers present
// the shared API key; the external scheduling service signs its deliveries.
type Authenticator struct {
	apiKey   string
	verifier *SignatureVerifier
}

// NewAuthenticator builds the dual-scheme gate. An empty apiKey disables the
// API-key path rather than matching empty headers.
func NewAuthenticator(apiKey string, verifier *SignatureVerifier) *Authenticator {
	return &Authenticator{apiKey: apiKey, verifier: verifier}
}

// Authorize accepts the request if the API key header matches, or if the
// signature header verifies against the raw body. API key is checked first:
// internal calls are the common case and the cheaper check.
func (a *Authenticator) Authorize(r *http.Request, body []byte) error {
	if key := r.Header.Get(APIKeyHeader); key != "" && a.apiKey != "" {
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) == 1 {
			return nil
		}
		// A wrong key does not fall through to signature checking; a
		// caller presenting a key identified itself as internal.
		logging.Warn().Str("path", r.URL.Path).Msg("Rejected request with invalid API key")
		return ErrUnauthorized
	}

	sig := r.Header.Get(SignatureHeader)
	if sig == "" || a.verifier == nil {
		logging.Warn().Str("path", r.URL.Path).Msg("Rejected request with no credentials")
		return ErrUnauthorized
	}
	if err := a.verifier.Verify(sig, body); err != nil {
		logging.Warn().Str("path", r.URL.Path).Msg("Rejected request with invalid signature")
		return ErrUnauthorized
	}
	return nil
}
