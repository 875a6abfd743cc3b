// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
	"github.com/danielhkuo/quickly-poll/testutil"
)

func newTestHandlers(t *testing.T) (*polls.Service, *PollHandler, *VotingHandler, *ResultsHandler) {
	t.Helper()
	store := testutil.SetupTestStore(t)
	svc := testutil.NewTestService(t, store)
	return svc, NewPollHandler(svc), NewVotingHandler(svc), NewResultsHandler(svc)
}

func TestCreatePoll(t *testing.T) {
	_, pollHandler, _, _ := newTestHandlers(t)

	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   string
		expectedCount  int
	}{
		{
			name:           "valid poll",
			body:           models.CreatePollRequest{Question: "Tea or coffee?", Options: []string{"Tea", "Coffee"}},
			expectedStatus: http.StatusCreated,
			expectedCount:  2,
		},
		{
			name:           "blank options are dropped",
			body:           models.CreatePollRequest{Question: "Pick", Options: []string{"A", " ", "", "B", "C"}},
			expectedStatus: http.StatusCreated,
			expectedCount:  3,
		},
		{
			name:           "eight options",
			body:           models.CreatePollRequest{Question: "Pick", Options: []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
			expectedStatus: http.StatusCreated,
			expectedCount:  8,
		},
		{
			name:           "missing question",
			body:           models.CreatePollRequest{Options: []string{"A", "B"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "one option",
			body:           models.CreatePollRequest{Question: "Pick", Options: []string{"A"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "only one non-blank option",
			body:           models.CreatePollRequest{Question: "Pick", Options: []string{"A", "  "}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "nine options",
			body:           models.CreatePollRequest{Question: "Pick", Options: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "unknown field",
			body:           map[string]interface{}{"question": "Pick", "options": []string{"A", "B"}, "title": "x"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls", tc.body, nil)
			w := httptest.NewRecorder()

			pollHandler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)

			if tc.expectedStatus == http.StatusCreated {
				var poll models.Poll
				testutil.AssertJSON(t, w, &poll)
				if poll.ID == "" {
					t.Error("Expected poll id in response")
				}
				if poll.Closed {
					t.Error("New poll should be open")
				}
				if len(poll.Options) != tc.expectedCount {
					t.Errorf("Expected %d options, got %d", tc.expectedCount, len(poll.Options))
				}
				for i, opt := range poll.Options {
					if opt.ID != i || opt.Votes != 0 {
						t.Errorf("Unexpected option %+v at position %d", opt, i)
					}
				}
				return
			}

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Code != tc.expectedCode {
				t.Errorf("Expected code %q, got %q (%s)", tc.expectedCode, resp.Code, resp.Error)
			}
		})
	}
}

func TestCreatePoll_InvalidJSON(t *testing.T) {
	_, pollHandler, _, _ := newTestHandlers(t)

	req := httptest.NewRequest("POST", "/polls", strings.NewReader("{invalid json}"))
	w := httptest.NewRecorder()

	pollHandler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestListPolls(t *testing.T) {
	store := testutil.SetupTestStore(t)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := testutil.NewTestService(t, store, polls.WithClock(func() time.Time { return clock }))
	pollHandler := NewPollHandler(svc)

	t.Run("empty store returns empty array", func(t *testing.T) {
		w := httptest.NewRecorder()
		pollHandler.ListPolls(w, httptest.NewRequest("GET", "/polls", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("Expected [], got %s", body)
		}
	})

	first := testutil.CreateTestPoll(t, svc, "First", "A", "B")
	clock = clock.Add(time.Minute)
	second := testutil.CreateTestPoll(t, svc, "Second", "A", "B", "C")
	testutil.CastTestVote(t, svc, second.ID, "session-1", 2)

	w := httptest.NewRecorder()
	pollHandler.ListPolls(w, httptest.NewRequest("GET", "/polls", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var list []models.PollSummary
	testutil.AssertJSON(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("Expected 2 polls, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("Expected newest poll first")
	}
	if list[0].TotalVotes != 1 || list[0].OptionCount != 3 {
		t.Errorf("Unexpected summary %+v", list[0])
	}
}

func TestGetPoll(t *testing.T) {
	svc, pollHandler, _, _ := newTestHandlers(t)
	poll := testutil.CreateTestPoll(t, svc, "Tea or coffee?", "Tea", "Coffee")
	testutil.CastTestVote(t, svc, poll.ID, "voter-1", 1)

	t.Run("session that voted", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, map[string]string{"X-Session-Id": "voter-1"})
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		pollHandler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var view models.PollView
		testutil.AssertJSON(t, w, &view)
		if !view.HasVoted {
			t.Error("Expected hasVoted true")
		}
		if view.VotedOptionID == nil || *view.VotedOptionID != 1 {
			t.Errorf("Expected votedOptionId 1, got %v", view.VotedOptionID)
		}
		if view.TotalVotes != 1 {
			t.Errorf("Expected totalVotes 1, got %d", view.TotalVotes)
		}
	})

	t.Run("session that has not voted", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+poll.ID, nil, map[string]string{"X-Session-Id": "voter-2"})
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		pollHandler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), `"votedOptionId":null`) {
			t.Errorf("Expected explicit null votedOptionId, got %s", w.Body.String())
		}
	})

	t.Run("missing poll", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/nope", nil, nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		pollHandler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestClosePoll(t *testing.T) {
	svc, pollHandler, _, _ := newTestHandlers(t)
	poll := testutil.CreateTestPoll(t, svc, "Close me", "A", "B")

	for i := 0; i < 2; i++ {
		req := testutil.MakeRequest("PATCH", "/polls/"+poll.ID+"/close", nil, nil)
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		pollHandler.ClosePoll(w, req)

		// Second close is idempotent
		testutil.AssertStatus(t, w, http.StatusOK)
		var closed models.Poll
		testutil.AssertJSON(t, w, &closed)
		if !closed.Closed {
			t.Errorf("Attempt %d: expected closed poll", i+1)
		}
	}

	req := testutil.MakeRequest("PATCH", "/polls/nope/close", nil, nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	pollHandler.ClosePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
