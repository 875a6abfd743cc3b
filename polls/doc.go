// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls implements poll lifecycle, voting, and results.

# Service

Service is what handlers talk to:

	ledger, _ := polls.NewLedger(store, cfg.VoteCacheSize)
	svc := polls.NewService(store, ledger, polls.WithObserver(m))

	poll, err := svc.CreatePoll(ctx, "Tea or coffee?", []string{"Tea", "Coffee"})
	view, err := svc.SubmitVote(ctx, poll.ID, sessionID, 0)

# Lifecycle

A poll is open when created and can be closed exactly once. ClosePoll on a closed
poll returns the poll unchanged. Votes are accepted only while open.

# Voting

Each session gets one vote per poll. Ledger.Cast validates the poll and option,
then hands the insert-if-absent and counter increment to Store.CastVote, which
performs both in a single transaction. A second vote from the same session fails
with *AlreadyVotedError carrying the first choice.

Sessions are client-supplied tokens with no cryptographic binding; they
deduplicate honest clients and nothing more.

# Results

ComputeResults sums the stored counters. It is a pure function; Service reads
the poll from the store on every results call.

# Errors

	*ValidationError  bad input, message safe for users
	ErrNotFound       unknown poll
	ErrPollClosed     vote on a closed poll
	ErrInvalidOption  option not in poll
	ErrAlreadyVoted   duplicate vote (use errors.As for *AlreadyVotedError)
	*StorageError     persistence failure, log only
*/
package polls
