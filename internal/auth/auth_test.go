// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignatureVerify(t *testing.T) {
	body := []byte(`{"timeRange":"day"}`)
	verifier := NewSignatureVerifier("current-key", "next-key")

	tests := []struct {
		name    string
		signKey string
		body    []byte
		wantErr bool
	}{
		{"current key", "current-key", body, false},
		{"next key during rotation", "next-key", body, false},
		{"retired key", "old-key", body, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Sign(body, tt.signKey, time.Minute)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			err = verifier.Verify(sig, tt.body)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// The signature binds to the exact body; replaying it against a different
// payload must fail.
func TestSignatureRejectsModifiedBody(t *testing.T) {
	verifier := NewSignatureVerifier("key", "")
	sig, err := Sign([]byte(`{"timeRange":"day"}`), "key", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := verifier.Verify(sig, []byte(`{"timeRange":"all-ranges"}`)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Verify(modified body) = %v, want ErrUnauthorized", err)
	}
}

func TestSignatureRejectsExpired(t *testing.T) {
	verifier := NewSignatureVerifier("key", "")
	body := []byte(`{}`)
	sig, err := Sign(body, "key", -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := verifier.Verify(sig, body); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Verify(expired) = %v, want ErrUnauthorized", err)
	}
}

func TestSignatureRejectsEmpty(t *testing.T) {
	verifier := NewSignatureVerifier("key", "")
	if err := verifier.Verify("", []byte(`{}`)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Verify(empty) = %v, want ErrUnauthorized", err)
	}
}

func TestAuthorize(t *testing.T) {
	body := []byte(`{"timeRange":"week"}`)
	verifier := NewSignatureVerifier("sign-key", "")
	authn := NewAuthenticator("secret-key", verifier)

	goodSig, err := Sign(body, "sign-key", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	badSig, err := Sign(body, "wrong-key", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name      string
		apiKey    string
		signature string
		wantErr   bool
	}{
		{"valid api key", "secret-key", "", false},
		{"invalid api key", "guess", "", true},
		{"valid signature", "", goodSig, false},
		{"invalid signature", "", badSig, true},
		{"no credentials", "", "", true},
		// A wrong API key is rejected outright even when a valid
		// signature is also present.
		{"wrong key does not fall through", "guess", goodSig, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/webhooks/invalidate-trending", nil)
			if tt.apiKey != "" {
				r.Header.Set(APIKeyHeader, tt.apiKey)
			}
			if tt.signature != "" {
				r.Header.Set(SignatureHeader, tt.signature)
			}

			err := authn.Authorize(r, body)
			if (err != nil) != tt.wantErr {
				t.Errorf("Authorize error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// With no API key configured, presenting one must not match the empty string.
func TestAuthorizeUnconfiguredAPIKey(t *testing.T) {
	authn := NewAuthenticator("", NewSignatureVerifier("sign-key", ""))

	r := httptest.NewRequest("POST", "/", nil)
	r.Header.Set(APIKeyHeader, "")
	if err := authn.Authorize(r, nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authorize = %v, want ErrUnauthorized", err)
	}
}
