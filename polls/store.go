// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"

	"github.com/danielhkuo/quickly-poll/models"
)

// Store is durable storage for polls, options, and vote records.
//
// Implementations return ErrNotFound, ErrPollClosed, ErrInvalidOption and
// *AlreadyVotedError as plain outcomes; anything else is treated as a storage failure.
type Store interface {
	// CreatePoll persists a poll and all of its options, or nothing.
	CreatePoll(ctx context.Context, poll models.Poll) error
	GetPoll(ctx context.Context, id string) (models.Poll, error)
	// ListPolls returns summaries, most recently created first.
	ListPolls(ctx context.Context) ([]models.PollSummary, error)
	// ClosePoll marks the poll closed. transitioned is false if it was already closed.
	ClosePoll(ctx context.Context, id string) (poll models.Poll, transitioned bool, err error)
	// CastVote checks the poll is open and owns the option, inserts the record if the
	// session has none for this poll, and increments the option counter. All of it
	// happens in one atomic unit.
	CastVote(ctx context.Context, vote models.VoteRecord) (models.Poll, error)
	GetVote(ctx context.Context, pollID, sessionID string) (vote models.VoteRecord, found bool, err error)
	Close() error
}

// TotalVotes sums the option counters
func TotalVotes(options []models.Option) int {
	total := 0
	for _, opt := range options {
		total += opt.Votes
	}
	return total
}
