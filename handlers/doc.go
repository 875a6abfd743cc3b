// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Poll API.

# Handler Types

Each handler is a struct wrapping the poll service:

  - PollHandler: Poll lifecycle (create, list, get, close)
  - VotingHandler: Vote submission
  - ResultsHandler: Tallies
  - HealthHandler: Liveness and uptime

Handlers are created via constructor functions that accept *polls.Service:

	pollHandler := handlers.NewPollHandler(svc)

# Poll Lifecycle

Polls start open and may be closed once:

	POST  /polls            → CreatePoll (201, 2-8 non-blank options)
	GET   /polls            → ListPolls (newest first)
	GET   /polls/{id}       → GetPoll (annotated with hasVoted, votedOptionId)
	PATCH /polls/{id}/close → ClosePoll (idempotent)

# Voting Flow

	POST /polls/{id}/vote    → SubmitVote {optionId}
	GET  /polls/{id}/results → GetResults

Voters are identified by the X-Session-Id header. A request without one gets
a throwaway identity, so its vote can never be deduplicated.

# Error Mapping

Service errors are translated in one place (writeError):

	ValidationError   → 400 validation
	ErrInvalidOption  → 400 invalid_option
	ErrPollClosed     → 403 poll_closed
	ErrNotFound       → 404 not_found
	ErrAlreadyVoted   → 409 already_voted (with votedOptionId)
	anything else     → 500 internal, logged with slog
*/
package handlers
