// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielhkuo/quickly-poll/models"
)

// DefaultVoterCacheSize bounds the known-voter cache
const DefaultVoterCacheSize = 4096

// Ledger casts votes and answers "has this session voted" for a poll.
//
// Vote records never change once written, so positive lookups are cached and
// a known voter is turned away without a write transaction. Misses always go
// to the store.
type Ledger struct {
	store  Store
	voters *lru.Cache[voterKey, int]
	now    func() time.Time
}

type voterKey struct {
	pollID    string
	sessionID string
}

func NewLedger(store Store, cacheSize int) (*Ledger, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultVoterCacheSize
	}
	voters, err := lru.New[voterKey, int](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create voter cache: %w", err)
	}
	return &Ledger{store: store, voters: voters, now: time.Now}, nil
}

// Cast records one vote for sessionID on pollID and returns the updated poll.
//
// A session that already voted gets an *AlreadyVotedError naming its first choice;
// the existing record is never overwritten.
func (l *Ledger) Cast(ctx context.Context, pollID, sessionID string, optionID int) (models.Poll, error) {
	if sessionID == "" {
		return models.Poll{}, invalid("session", "session id is required")
	}

	poll, err := l.store.GetPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, storageErr("get poll", err)
	}
	if poll.Closed {
		return models.Poll{}, ErrPollClosed
	}
	if !poll.HasOption(optionID) {
		return models.Poll{}, ErrInvalidOption
	}

	// Checked after eligibility so the outcome order matches the store's
	key := voterKey{pollID: pollID, sessionID: sessionID}
	if prev, ok := l.voters.Get(key); ok {
		return models.Poll{}, &AlreadyVotedError{OptionID: prev}
	}

	// The store re-checks closed/option inside its transaction; a close racing
	// with this vote is resolved there.
	updated, err := l.store.CastVote(ctx, models.VoteRecord{
		PollID:    pollID,
		SessionID: sessionID,
		OptionID:  optionID,
		CreatedAt: l.now().UTC(),
	})
	if err != nil {
		var dup *AlreadyVotedError
		if errors.As(err, &dup) {
			l.voters.Add(key, dup.OptionID)
		}
		return models.Poll{}, storageErr("cast vote", err)
	}

	l.voters.Add(key, optionID)
	updated.TotalVotes = TotalVotes(updated.Options)
	return updated, nil
}

// Lookup reports the option sessionID voted for on pollID, if any
func (l *Ledger) Lookup(ctx context.Context, pollID, sessionID string) (optionID int, voted bool, err error) {
	key := voterKey{pollID: pollID, sessionID: sessionID}
	if prev, ok := l.voters.Get(key); ok {
		return prev, true, nil
	}

	vote, found, err := l.store.GetVote(ctx, pollID, sessionID)
	if err != nil {
		return 0, false, storageErr("get vote", err)
	}
	if !found {
		return 0, false, nil
	}
	l.voters.Add(key, vote.OptionID)
	return vote.OptionID, true, nil
}
