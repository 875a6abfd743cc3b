// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package kvstore is a polls.Store on an embedded bbolt file.

	store, err := kvstore.Open("data/quickly-poll.bolt")

Polls are JSON documents keyed by id, with a secondary index keyed by
big-endian creation time for newest-first listing. Vote records live in a
nested bucket per poll, keyed by session id.

Each CastVote is one bolt Update: bolt admits a single writer, so the
existence check on the session key, the insert, and the counter increment
cannot interleave with another vote.
*/
package kvstore
