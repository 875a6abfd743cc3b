// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import "github.com/danielhkuo/quickly-poll/models"

// ComputeResults derives tallies from the poll's stored counters.
// It does not modify poll.
func ComputeResults(poll models.Poll) models.Results {
	tallies := make([]models.OptionTally, len(poll.Options))
	total := 0
	for i, opt := range poll.Options {
		tallies[i] = models.OptionTally{ID: opt.ID, Text: opt.Text, Votes: opt.Votes}
		total += opt.Votes
	}

	return models.Results{
		PollID:     poll.ID,
		Question:   poll.Question,
		Closed:     poll.Closed,
		Options:    tallies,
		TotalVotes: total,
		CreatedAt:  poll.CreatedAt,
	}
}
