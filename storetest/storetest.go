// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storetest is a conformance suite every polls.Store implementation must pass.
//
//	func TestConformance(t *testing.T) {
//		storetest.Run(t, func(t *testing.T) polls.Store { return openStore(t) })
//	}
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) polls.Store

// Run executes the whole suite, one fresh store per case
func Run(t *testing.T, newStore Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s polls.Store)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"GetMissing", testGetMissing},
		{"ListNewestFirst", testListNewestFirst},
		{"CloseIdempotent", testCloseIdempotent},
		{"CloseMissing", testCloseMissing},
		{"CastVote", testCastVote},
		{"CastVoteDuplicate", testCastVoteDuplicate},
		{"CastVoteClosed", testCastVoteClosed},
		{"CastVoteInvalidOption", testCastVoteInvalidOption},
		{"CastVoteMissingPoll", testCastVoteMissingPoll},
		{"ConcurrentDistinctSessions", testConcurrentDistinctSessions},
		{"ConcurrentSameSession", testConcurrentSameSession},
		{"IndependentPolls", testIndependentPolls},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tc.fn(t, s)
		})
	}
}

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newPoll(t *testing.T, question string, createdAt time.Time, options ...string) models.Poll {
	t.Helper()
	poll, err := polls.NewPoll(question, options, createdAt)
	require.NoError(t, err)
	return poll
}

func mustCreate(t *testing.T, s polls.Store, poll models.Poll) models.Poll {
	t.Helper()
	require.NoError(t, s.CreatePoll(context.Background(), poll))
	return poll
}

func vote(pollID, sessionID string, optionID int) models.VoteRecord {
	return models.VoteRecord{PollID: pollID, SessionID: sessionID, OptionID: optionID, CreatedAt: base}
}

func testCreateAndGet(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()

	created := mustCreate(t, s, newPoll(t, "Tea or coffee?", base, "Tea", "Coffee", "Water"))

	got, err := s.GetPoll(ctx, created.ID)
	require.NoError(err)
	require.Equal(created.ID, got.ID)
	require.Equal("Tea or coffee?", got.Question)
	require.False(got.Closed)
	require.True(created.CreatedAt.Equal(got.CreatedAt))
	require.Len(got.Options, 3)
	for i, opt := range got.Options {
		require.Equal(i, opt.ID)
		require.Equal(0, opt.Votes)
	}
	require.Equal("Water", got.Options[2].Text)
	require.Equal(0, got.TotalVotes)
}

func testGetMissing(t *testing.T, s polls.Store) {
	_, err := s.GetPoll(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, polls.ErrNotFound)
}

func testListNewestFirst(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()

	empty, err := s.ListPolls(ctx)
	require.NoError(err)
	require.Empty(empty)

	oldest := mustCreate(t, s, newPoll(t, "first", base, "a", "b"))
	middle := mustCreate(t, s, newPoll(t, "second", base.Add(time.Minute), "a", "b", "c"))
	newest := mustCreate(t, s, newPoll(t, "third", base.Add(2*time.Minute), "a", "b"))

	_, err = s.CastVote(ctx, vote(middle.ID, "s1", 2))
	require.NoError(err)
	_, _, err = s.ClosePoll(ctx, oldest.ID)
	require.NoError(err)

	list, err := s.ListPolls(ctx)
	require.NoError(err)
	require.Len(list, 3)
	require.Equal([]string{newest.ID, middle.ID, oldest.ID},
		[]string{list[0].ID, list[1].ID, list[2].ID})

	require.Equal("second", list[1].Question)
	require.Equal(3, list[1].OptionCount)
	require.Equal(1, list[1].TotalVotes)
	require.True(list[2].Closed)
	require.False(list[0].Closed)
	require.True(middle.CreatedAt.Equal(list[1].CreatedAt))
}

func testCloseIdempotent(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	closed, transitioned, err := s.ClosePoll(ctx, poll.ID)
	require.NoError(err)
	require.True(transitioned)
	require.True(closed.Closed)

	again, transitioned, err := s.ClosePoll(ctx, poll.ID)
	require.NoError(err)
	require.False(transitioned)
	require.True(again.Closed)
	require.Len(again.Options, 2)
}

func testCloseMissing(t *testing.T, s polls.Store) {
	_, _, err := s.ClosePoll(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, polls.ErrNotFound)
}

func testCastVote(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	updated, err := s.CastVote(ctx, vote(poll.ID, "session-a", 1))
	require.NoError(err)
	require.Equal(0, updated.Options[0].Votes)
	require.Equal(1, updated.Options[1].Votes)
	require.Equal(1, updated.TotalVotes)

	rec, found, err := s.GetVote(ctx, poll.ID, "session-a")
	require.NoError(err)
	require.True(found)
	require.Equal(1, rec.OptionID)
	require.Equal(poll.ID, rec.PollID)

	_, found, err = s.GetVote(ctx, poll.ID, "session-b")
	require.NoError(err)
	require.False(found)
}

func testCastVoteDuplicate(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	_, err := s.CastVote(ctx, vote(poll.ID, "session-a", 0))
	require.NoError(err)

	for i := 0; i < 3; i++ {
		_, err = s.CastVote(ctx, vote(poll.ID, "session-a", 1))
		require.ErrorIs(err, polls.ErrAlreadyVoted)

		var dup *polls.AlreadyVotedError
		require.True(errors.As(err, &dup))
		require.Equal(0, dup.OptionID, "first vote stays authoritative")
	}

	got, err := s.GetPoll(ctx, poll.ID)
	require.NoError(err)
	require.Equal(1, got.Options[0].Votes)
	require.Equal(0, got.Options[1].Votes)
}

func testCastVoteClosed(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	_, err := s.CastVote(ctx, vote(poll.ID, "voted-before", 0))
	require.NoError(err)
	_, _, err = s.ClosePoll(ctx, poll.ID)
	require.NoError(err)

	_, err = s.CastVote(ctx, vote(poll.ID, "new-session", 1))
	require.ErrorIs(err, polls.ErrPollClosed)
	_, err = s.CastVote(ctx, vote(poll.ID, "voted-before", 1))
	require.ErrorIs(err, polls.ErrPollClosed)

	got, err := s.GetPoll(ctx, poll.ID)
	require.NoError(err)
	require.Equal(1, got.TotalVotes)
}

func testCastVoteInvalidOption(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	for _, optionID := range []int{-1, 2, 99} {
		_, err := s.CastVote(ctx, vote(poll.ID, "session-a", optionID))
		require.ErrorIs(err, polls.ErrInvalidOption)
	}

	// A rejected attempt must not count as the session's vote
	_, err := s.CastVote(ctx, vote(poll.ID, "session-a", 0))
	require.NoError(err)
}

func testCastVoteMissingPoll(t *testing.T, s polls.Store) {
	_, err := s.CastVote(context.Background(), vote("does-not-exist", "session-a", 0))
	require.ErrorIs(t, err, polls.ErrNotFound)
}

func testConcurrentDistinctSessions(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	const n = 50
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.CastVote(ctx, vote(poll.ID, fmt.Sprintf("session-%d", i), 1)); err != nil {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Zero(failures.Load())
	got, err := s.GetPoll(ctx, poll.ID)
	require.NoError(err)
	require.Equal(n, got.Options[1].Votes, "no lost updates")
	require.Equal(n, got.TotalVotes)
}

func testConcurrentSameSession(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	poll := mustCreate(t, s, newPoll(t, "q", base, "a", "b"))

	const n = 20
	var wg sync.WaitGroup
	var accepted, duplicates atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CastVote(ctx, vote(poll.ID, "same-session", i%2))
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, polls.ErrAlreadyVoted):
				duplicates.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(int32(1), accepted.Load())
	require.Equal(int32(n-1), duplicates.Load())

	got, err := s.GetPoll(ctx, poll.ID)
	require.NoError(err)
	require.Equal(1, got.TotalVotes)

	rec, found, err := s.GetVote(ctx, poll.ID, "same-session")
	require.NoError(err)
	require.True(found)
	require.Equal(1, got.Options[rec.OptionID].Votes)
}

func testIndependentPolls(t *testing.T, s polls.Store) {
	require := require.New(t)
	ctx := context.Background()
	p1 := mustCreate(t, s, newPoll(t, "one", base, "a", "b"))
	p2 := mustCreate(t, s, newPoll(t, "two", base.Add(time.Second), "a", "b"))

	_, err := s.CastVote(ctx, vote(p1.ID, "shared-session", 0))
	require.NoError(err)
	_, err = s.CastVote(ctx, vote(p2.ID, "shared-session", 1))
	require.NoError(err, "a session votes independently per poll")

	_, _, err = s.ClosePoll(ctx, p1.ID)
	require.NoError(err)

	got, err := s.GetPoll(ctx, p2.ID)
	require.NoError(err)
	require.False(got.Closed)
	require.Equal(1, got.Options[1].Votes)
}
