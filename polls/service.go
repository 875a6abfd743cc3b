// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-poll/models"
)

// Service is the poll API: lifecycle, voting, and results
type Service struct {
	store    Store
	ledger   *Ledger
	observer Observer
	now      func() time.Time
}

type ServiceOption func(*Service)

// WithObserver reports lifecycle events to o
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides time.Now, for tests
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
		s.ledger.now = now
	}
}

func NewService(store Store, ledger *Ledger, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		ledger:   ledger,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePoll validates the input and stores a new open poll
func (s *Service) CreatePoll(ctx context.Context, question string, options []string) (models.Poll, error) {
	poll, err := NewPoll(question, options, s.now())
	if err != nil {
		return models.Poll{}, err
	}

	if err := s.store.CreatePoll(ctx, poll); err != nil {
		return models.Poll{}, storageErr("create poll", err)
	}

	s.observer.PollCreated()
	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))
	return poll, nil
}

func (s *Service) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	summaries, err := s.store.ListPolls(ctx)
	if err != nil {
		return nil, storageErr("list polls", err)
	}
	if summaries == nil {
		summaries = []models.PollSummary{}
	}
	return summaries, nil
}

// GetPoll returns the poll annotated with the session's vote, if any
func (s *Service) GetPoll(ctx context.Context, id, sessionID string) (models.PollView, error) {
	poll, err := s.store.GetPoll(ctx, id)
	if err != nil {
		return models.PollView{}, storageErr("get poll", err)
	}
	poll.TotalVotes = TotalVotes(poll.Options)

	view := models.PollView{Poll: poll}
	optionID, voted, err := s.ledger.Lookup(ctx, id, sessionID)
	if err != nil {
		return models.PollView{}, err
	}
	if voted {
		view.HasVoted = true
		view.VotedOptionID = &optionID
	}
	return view, nil
}

// SubmitVote casts the session's vote and returns the updated poll
func (s *Service) SubmitVote(ctx context.Context, id, sessionID string, optionID int) (models.PollView, error) {
	poll, err := s.ledger.Cast(ctx, id, sessionID, optionID)
	s.observer.VoteCast(voteOutcome(err))
	if err != nil {
		var dup *AlreadyVotedError
		if errors.As(err, &dup) {
			slog.Info("duplicate vote rejected", "poll_id", id, "option_id", dup.OptionID)
		}
		return models.PollView{}, err
	}

	slog.Info("vote recorded", "poll_id", id, "option_id", optionID)
	return models.PollView{Poll: poll, HasVoted: true, VotedOptionID: &optionID}, nil
}

// GetResults reads the counters fresh on every call
func (s *Service) GetResults(ctx context.Context, id string) (models.Results, error) {
	poll, err := s.store.GetPoll(ctx, id)
	if err != nil {
		return models.Results{}, storageErr("get poll", err)
	}
	return ComputeResults(poll), nil
}

// ClosePoll closes the poll. Closing an already-closed poll is not an error.
func (s *Service) ClosePoll(ctx context.Context, id string) (models.Poll, error) {
	poll, transitioned, err := s.store.ClosePoll(ctx, id)
	if err != nil {
		return models.Poll{}, storageErr("close poll", err)
	}
	poll.TotalVotes = TotalVotes(poll.Options)

	if transitioned {
		s.observer.PollClosed()
		slog.Info("poll closed", "poll_id", id, "total_votes", poll.TotalVotes)
	}
	return poll, nil
}

// SeedDemo creates a sample poll when the store is empty
func (s *Service) SeedDemo(ctx context.Context) error {
	existing, err := s.ListPolls(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = s.CreatePoll(ctx, "What's your favorite programming language?", []string{
		"JavaScript", "Python", "Go", "Rust", "TypeScript", "Java",
	})
	return err
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, ErrAlreadyVoted):
		return OutcomeAlreadyVoted
	case errors.Is(err, ErrPollClosed):
		return OutcomePollClosed
	case errors.Is(err, ErrInvalidOption):
		return OutcomeInvalidOption
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
