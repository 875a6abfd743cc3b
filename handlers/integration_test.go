// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/testutil"
)

// TestFullPollLifecycle walks a poll from creation to close through the handlers
func TestFullPollLifecycle(t *testing.T) {
	_, pollHandler, votingHandler, resultsHandler := newTestHandlers(t)

	// Step 1: Create poll
	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "Tea or coffee?",
		Options:  []string{"Tea", "Coffee", ""},
	}, nil)
	w := httptest.NewRecorder()
	pollHandler.CreatePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var poll models.Poll
	testutil.AssertJSON(t, w, &poll)
	if len(poll.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(poll.Options))
	}

	// Step 2: Session A votes for Tea
	w = httptest.NewRecorder()
	votingHandler.SubmitVote(w, voteRequest(poll.ID, "session-a", optionBody(0)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 3: Session B votes for Coffee
	w = httptest.NewRecorder()
	votingHandler.SubmitVote(w, voteRequest(poll.ID, "session-b", optionBody(1)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 4: Session A tries again
	w = httptest.NewRecorder()
	votingHandler.SubmitVote(w, voteRequest(poll.ID, "session-a", optionBody(1)))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 5: Results show one vote each
	w = getResults(t, resultsHandler, poll.ID)
	testutil.AssertStatus(t, w, http.StatusOK)
	var results models.Results
	testutil.AssertJSON(t, w, &results)
	if results.Options[0].Votes != 1 || results.Options[1].Votes != 1 || results.TotalVotes != 2 {
		t.Errorf("Expected 1/1 of 2, got %+v", results)
	}

	// Step 6: Session A sees its own vote
	getReq := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, map[string]string{"X-Session-Id": "session-a"})
	getReq.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	pollHandler.GetPoll(w, getReq)
	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.PollView
	testutil.AssertJSON(t, w, &view)
	if !view.HasVoted || view.VotedOptionID == nil || *view.VotedOptionID != 0 {
		t.Errorf("Expected session-a to have voted for 0, got %+v", view)
	}

	// Step 7: Close
	closeReq := testutil.MakeRequest("PATCH", "/polls/"+poll.ID+"/close", nil, nil)
	closeReq.SetPathValue("id", poll.ID)
	w = httptest.NewRecorder()
	pollHandler.ClosePoll(w, closeReq)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 8: New session is turned away
	w = httptest.NewRecorder()
	votingHandler.SubmitVote(w, voteRequest(poll.ID, "session-c", optionBody(0)))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// Step 9: Results are frozen
	w = getResults(t, resultsHandler, poll.ID)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &results)
	if !results.Closed || results.TotalVotes != 2 {
		t.Errorf("Expected closed poll with 2 votes, got %+v", results)
	}
}
