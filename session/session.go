// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Header carries the client-generated session token
const Header = "X-Session-Id"

// MaxTokenLength bounds tokens kept verbatim; longer ones are keyed by digest
const MaxTokenLength = 128

// Server-minted identities start with a space, which a trimmed token never does
const (
	anonymousPrefix = " anon-"
	digestPrefix    = " sha256-"
)

// Identity is the correlation key used to deduplicate votes
type Identity struct {
	ID string
	// Anonymous is set when the request carried no token. Such identities are
	// fresh per request and can never match a previous vote.
	Anonymous bool
}

// FromRequest resolves the caller's identity from the session header
func FromRequest(r *http.Request) Identity {
	token := Normalize(r.Header.Get(Header))
	if token == "" {
		return NewAnonymous()
	}
	return Identity{ID: token}
}

// Normalize maps a raw token to its deduplication key. It returns "" for a
// blank token. Distinct tokens always map to distinct keys.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > MaxTokenLength {
		sum := sha256.Sum256([]byte(token))
		return digestPrefix + hex.EncodeToString(sum[:])
	}
	return token
}

// NewAnonymous returns a one-off identity
func NewAnonymous() Identity {
	return Identity{ID: anonymousPrefix + uuid.NewString(), Anonymous: true}
}

// HashKey creates a one-way hash of a value, e.g. a client IP, for use as a
// rate-limit key without keeping the raw value in memory
func HashKey(value, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are enough for bucketing
	return hex.EncodeToString(sum[:8])
}
