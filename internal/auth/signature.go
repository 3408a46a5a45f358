// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package auth guards the webhook surface. Callers authenticate with either
// the static internal API key or a signed request; both paths share one
// gate so handlers never reimplement the precedence.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned when neither credential verifies.
var ErrUnauthorized = errors.New("auth: unauthorized")

// signatureClaims is the JWT payload carried in the signature header. Sub
// binds the token to the exact request body via its SHA-256 digest, so a
// captured signature cannot be replayed against a different payload.
type signatureClaims struct {
	jwt.RegisteredClaims
}

const signatureIssuer = "trendora-scheduler"

// SignatureVerifier validates signed webhook requests against two rotating
// signing keys. Keeping current+next live allows zero-downtime rotation:
// promote next to current, issue a fresh next, and in-flight messages signed
// with either key keep verifying.
type SignatureVerifier struct {
	currentKey []byte
	nextKey    []byte
}

// NewSignatureVerifier creates a verifier over the two signing keys. The
// next key may be empty before the first rotation.
func NewSignatureVerifier(currentKey, nextKey string) *SignatureVerifier {
	return &SignatureVerifier{
		currentKey: []byte(currentKey),
		nextKey:    []byte(nextKey),
	}
}

// Verify checks signature against the raw request body, trying the current
// key first, then the next key.
func (v *SignatureVerifier) Verify(signature string, body []byte) error {
	if signature == "" {
		return ErrUnauthorized
	}

	if err := v.verifyWithKey(signature, body, v.currentKey); err == nil {
		return nil
	}
	if len(v.nextKey) > 0 {
		if err := v.verifyWithKey(signature, body, v.nextKey); err == nil {
			return nil
		}
	}
	return ErrUnauthorized
}

func (v *SignatureVerifier) verifyWithKey(signature string, body, key []byte) error {
	if len(key) == 0 {
		return ErrUnauthorized
	}

	var claims signatureClaims
	token, err := jwt.ParseWithClaims(signature, &claims,
		func(t *jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(signatureIssuer),
	)
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}

	if claims.Subject != bodyDigest(body) {
		return ErrUnauthorized
	}
	return nil
}

// Sign produces a signature for body with the given key. Used by tests and
// by operator tooling that replays webhook deliveries.
func Sign(body []byte, key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := signatureClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signatureIssuer,
			Subject:   bodyDigest(body),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", fmt.Errorf("sign request body: %w", err)
	}
	return signed, nil
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
