// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

// Vote outcomes reported to an Observer
const (
	OutcomeAccepted      = "accepted"
	OutcomeAlreadyVoted  = "already_voted"
	OutcomePollClosed    = "poll_closed"
	OutcomeInvalidOption = "invalid_option"
	OutcomeNotFound      = "not_found"
	OutcomeError         = "error"
)

// Observer receives lifecycle events from the Service
type Observer interface {
	PollCreated()
	PollClosed()
	VoteCast(outcome string)
}

type nopObserver struct{}

func (nopObserver) PollCreated() {}
func (nopObserver) PollClosed() {}
func (nopObserver) VoteCast(string) {}
