// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickly-poll/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes from different sessions
// are all counted, with no lost updates
func TestConcurrentVotes(t *testing.T) {
	svc, _, votingHandler, _ := newTestHandlers(t)
	poll := testutil.CreateTestPoll(t, svc, "Race?", "A", "B", "C")

	numVoters := 30
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			votingHandler.SubmitVote(w, voteRequest(poll.ID, fmt.Sprintf("voter-%d", voterIdx), optionBody(voterIdx%3)))

			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	results, err := svc.GetResults(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to get results: %v", err)
	}
	if results.TotalVotes != numVoters {
		t.Errorf("Expected %d votes in total, got %d", numVoters, results.TotalVotes)
	}
	for _, opt := range results.Options {
		if opt.Votes != numVoters/3 {
			t.Errorf("Option %d: expected %d votes, got %d", opt.ID, numVoters/3, opt.Votes)
		}
	}
}

// TestConcurrentSameSessionVotes verifies that when one session votes from many
// goroutines at once, exactly one vote is recorded
func TestConcurrentSameSessionVotes(t *testing.T) {
	svc, _, votingHandler, _ := newTestHandlers(t)
	poll := testutil.CreateTestPoll(t, svc, "Race?", "A", "B")

	numAttempts := 10
	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			votingHandler.SubmitVote(w, voteRequest(poll.ID, "double-clicker", optionBody(attempt%2)))

			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if int(conflictCount.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}

	results, err := svc.GetResults(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to get results: %v", err)
	}
	if results.TotalVotes != 1 {
		t.Errorf("Expected 1 vote in total, got %d", results.TotalVotes)
	}
}

// TestConcurrentCloseAndVote verifies that every vote accepted before the close
// is counted and none is accepted after it
func TestConcurrentCloseAndVote(t *testing.T) {
	svc, pollHandler, votingHandler, _ := newTestHandlers(t)
	poll := testutil.CreateTestPoll(t, svc, "Race?", "A", "B")

	numVoters := 20
	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			votingHandler.SubmitVote(w, voteRequest(poll.ID, fmt.Sprintf("voter-%d", voterIdx), optionBody(0)))

			switch w.Code {
			case http.StatusOK:
				accepted.Add(1)
			case http.StatusForbidden:
				rejected.Add(1)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		req := testutil.MakeRequest("PATCH", "/polls/"+poll.ID+"/close", nil, nil)
		req.SetPathValue("id", poll.ID)
		pollHandler.ClosePoll(httptest.NewRecorder(), req)
	}()

	wg.Wait()

	if int(accepted.Load()+rejected.Load()) != numVoters {
		t.Errorf("Expected every vote to be accepted or rejected as closed, got %d+%d", accepted.Load(), rejected.Load())
	}

	results, err := svc.GetResults(context.Background(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to get results: %v", err)
	}
	if !results.Closed {
		t.Error("Expected poll to be closed")
	}
	if results.TotalVotes != int(accepted.Load()) {
		t.Errorf("Expected %d counted votes, got %d", accepted.Load(), results.TotalVotes)
	}
}
