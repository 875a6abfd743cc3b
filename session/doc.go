// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session resolves the anonymous per-client identity used to deduplicate votes.

# Session Tokens

Clients generate an opaque token once and send it on every request:

	X-Session-Id: 6f1c0d2e-...

The server trusts it only as a correlation key. It authenticates nobody and can be
spoofed by any client that chooses another value.

# Missing Tokens

A request without a token gets a fresh identity:

	id := session.FromRequest(r)
	id.Anonymous // true
	id.ID        // " anon-<uuid>"

The anonymous identity is never returned to the client, so each such request counts
as its own session. Repeat votes without a token are therefore not deduplicated.
Server-minted keys start with a space. Tokens are trimmed before use, so no header
value can reach that namespace, and a client token such as "anon-123" is an ordinary
session like any other.

# Long Tokens

Tokens up to MaxTokenLength bytes are used verbatim. Longer tokens are keyed by their
SHA-256 digest, so two long tokens sharing a prefix stay two sessions.

# Key Hashing

For per-IP rate limiting without holding raw addresses:

	key := session.HashKey(ip, salt)

Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package session
