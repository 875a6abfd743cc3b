// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-poll/kvstore"
	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

type recordingObserver struct {
	mu      sync.Mutex
	created int
	closed  int
	votes   map[string]int
}

func (o *recordingObserver) PollCreated() { o.mu.Lock(); o.created++; o.mu.Unlock() }
func (o *recordingObserver) PollClosed() { o.mu.Lock(); o.closed++; o.mu.Unlock() }
func (o *recordingObserver) VoteCast(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.votes == nil {
		o.votes = map[string]int{}
	}
	o.votes[outcome]++
}

func newService(t *testing.T, opts ...polls.ServiceOption) (*polls.Service, polls.Store) {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "polls.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger, err := polls.NewLedger(store, 0)
	require.NoError(t, err)
	return polls.NewService(store, ledger, opts...), store
}

func TestService_TeaOrCoffee(t *testing.T) {
	require := require.New(t)
	obs := &recordingObserver{}
	svc, _ := newService(t, polls.WithObserver(obs))
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "Tea or coffee?", []string{"Tea", "Coffee"})
	require.NoError(err)

	view, err := svc.SubmitVote(ctx, poll.ID, "A", 0)
	require.NoError(err)
	require.True(view.HasVoted)
	require.Equal(0, *view.VotedOptionID)

	_, err = svc.SubmitVote(ctx, poll.ID, "B", 0)
	require.NoError(err)
	_, err = svc.SubmitVote(ctx, poll.ID, "C", 1)
	require.NoError(err)

	_, err = svc.SubmitVote(ctx, poll.ID, "A", 1)
	var dup *polls.AlreadyVotedError
	require.True(errors.As(err, &dup))
	require.Equal(0, dup.OptionID)

	results, err := svc.GetResults(ctx, poll.ID)
	require.NoError(err)
	require.Equal(2, results.Options[0].Votes)
	require.Equal(1, results.Options[1].Votes)
	require.Equal(3, results.TotalVotes)

	closed, err := svc.ClosePoll(ctx, poll.ID)
	require.NoError(err)
	require.True(closed.Closed)
	require.Equal(3, closed.TotalVotes)

	_, err = svc.SubmitVote(ctx, poll.ID, "D", 0)
	require.ErrorIs(err, polls.ErrPollClosed)

	require.Equal(1, obs.created)
	require.Equal(1, obs.closed)
	require.Equal(map[string]int{
		polls.OutcomeAccepted:     3,
		polls.OutcomeAlreadyVoted: 1,
		polls.OutcomePollClosed:   1,
	}, obs.votes)
}

func TestService_GetPollAnnotatesSession(t *testing.T) {
	require := require.New(t)
	svc, _ := newService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "q", []string{"a", "b", "c"})
	require.NoError(err)
	_, err = svc.SubmitVote(ctx, poll.ID, "voter", 2)
	require.NoError(err)

	view, err := svc.GetPoll(ctx, poll.ID, "voter")
	require.NoError(err)
	require.True(view.HasVoted)
	require.Equal(2, *view.VotedOptionID)
	require.Equal(1, view.TotalVotes)

	view, err = svc.GetPoll(ctx, poll.ID, "someone-else")
	require.NoError(err)
	require.False(view.HasVoted)
	require.Nil(view.VotedOptionID)

	_, err = svc.GetPoll(ctx, "missing", "voter")
	require.ErrorIs(err, polls.ErrNotFound)
}

func TestService_CloseIsIdempotent(t *testing.T) {
	require := require.New(t)
	obs := &recordingObserver{}
	svc, _ := newService(t, polls.WithObserver(obs))
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "q", []string{"a", "b"})
	require.NoError(err)

	for i := 0; i < 3; i++ {
		closed, err := svc.ClosePoll(ctx, poll.ID)
		require.NoError(err)
		require.True(closed.Closed)
	}
	require.Equal(1, obs.closed, "only the transition is reported")

	_, err = svc.ClosePoll(ctx, "missing")
	require.ErrorIs(err, polls.ErrNotFound)
}

func TestService_ConcurrentDistinctSessions(t *testing.T) {
	require := require.New(t)
	svc, _ := newService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "q", []string{"a", "b"})
	require.NoError(err)

	const n = 40
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SubmitVote(ctx, poll.ID, fmt.Sprintf("s%d", i), i%2)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(err)
	}
	results, err := svc.GetResults(ctx, poll.ID)
	require.NoError(err)
	require.Equal(n, results.TotalVotes)
	require.Equal(n/2, results.Options[0].Votes)
	require.Equal(n/2, results.Options[1].Votes)
}

func TestService_ListPolls(t *testing.T) {
	require := require.New(t)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newService(t, polls.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	list, err := svc.ListPolls(ctx)
	require.NoError(err)
	require.NotNil(list)
	require.Empty(list)

	first, err := svc.CreatePoll(ctx, "first", []string{"a", "b"})
	require.NoError(err)
	clock = clock.Add(time.Second)
	second, err := svc.CreatePoll(ctx, "second", []string{"a", "b"})
	require.NoError(err)

	list, err = svc.ListPolls(ctx)
	require.NoError(err)
	require.Len(list, 2)
	require.Equal(second.ID, list[0].ID)
	require.Equal(first.ID, list[1].ID)
}

func TestService_CreatePollValidation(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := newService(t, polls.WithObserver(obs))

	_, err := svc.CreatePoll(context.Background(), "q", []string{"only one", " "})

	var verr *polls.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Zero(t, obs.created)
}

func TestService_SeedDemo(t *testing.T) {
	require := require.New(t)
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(svc.SeedDemo(ctx))
	require.NoError(svc.SeedDemo(ctx))

	list, err := svc.ListPolls(ctx)
	require.NoError(err)
	require.Len(list, 1, "seeding is skipped when polls exist")
	require.Zero(list[0].TotalVotes)
	require.GreaterOrEqual(list[0].OptionCount, models.MinOptions)
}

// brokenStore fails every listing and lookup
type brokenStore struct {
	polls.Store
}

var errDisk = errors.New("disk on fire")

func (brokenStore) ListPolls(context.Context) ([]models.PollSummary, error) {
	return nil, errDisk
}

func (brokenStore) GetPoll(context.Context, string) (models.Poll, error) {
	return models.Poll{}, errDisk
}

func TestService_StorageErrors(t *testing.T) {
	require := require.New(t)
	obs := &recordingObserver{}
	_, store := newService(t)
	broken := brokenStore{Store: store}
	ledger, err := polls.NewLedger(broken, 0)
	require.NoError(err)
	svc := polls.NewService(broken, ledger, polls.WithObserver(obs))
	ctx := context.Background()

	_, err = svc.ListPolls(ctx)
	var serr *polls.StorageError
	require.True(errors.As(err, &serr))
	require.ErrorIs(err, errDisk)

	_, err = svc.GetResults(ctx, "p")
	require.True(errors.As(err, &serr))

	_, err = svc.SubmitVote(ctx, "p", "s", 0)
	require.True(errors.As(err, &serr))
	require.Equal(1, obs.votes[polls.OutcomeError])
}
