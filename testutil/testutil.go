// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/quickly-poll/cliparse"
	"github.com/danielhkuo/quickly-poll/db"
	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

// SetupTestStore opens a fresh SQLite store in a temp dir. It is closed when the test ends.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()

	url := filepath.Join(t.TempDir(), "polls.db")
	store, err := db.Open(context.Background(), db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// GetTestConfig returns a standard test configuration with rate limiting disabled
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Default()
	cfg.DatabaseURL = ":memory:"
	cfg.VoteRateLimit = 0
	return cfg
}

// NewTestService wires a service over store with a default-sized ledger
func NewTestService(t *testing.T, store polls.Store, opts ...polls.ServiceOption) *polls.Service {
	t.Helper()

	ledger, err := polls.NewLedger(store, polls.DefaultVoterCacheSize)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	return polls.NewService(store, ledger, opts...)
}

// CreateTestPoll creates an open poll through the service
func CreateTestPoll(t *testing.T, svc *polls.Service, question string, options ...string) models.Poll {
	t.Helper()

	poll, err := svc.CreatePoll(context.Background(), question, options)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

// CastTestVote records a vote for sessionID, failing the test on error
func CastTestVote(t *testing.T, svc *polls.Service, pollID, sessionID string, optionID int) {
	t.Helper()

	if _, err := svc.SubmitVote(context.Background(), pollID, sessionID, optionID); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
