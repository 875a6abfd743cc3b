// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: question, options ([]string)
  - VoteRequest: optionId

# Domain Types

  - Poll: question, ordered options, closed flag, creation time, derived totalVotes
  - Option: position-based id, text, vote counter
  - PollView: Poll plus hasVoted / votedOptionId for the calling session
  - PollSummary: list entry (id, question, closed, totalVotes, optionCount, createdAt)
  - VoteRecord: the immutable (poll, session) → option fact

# Result Types

  - Results: raw per-option counts and totalVotes. Percentages and winners are left
    to the client.

# Error Response

All failures are rendered as:

	{"error": "poll is closed", "code": "poll_closed"}

An already_voted response also carries the session's recorded votedOptionId.

# Constants

	MinOptions = 2
	MaxOptions = 8
*/
package models
