// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-poll/cliparse"
	"github.com/danielhkuo/quickly-poll/handlers"
	"github.com/danielhkuo/quickly-poll/metrics"
	"github.com/danielhkuo/quickly-poll/middleware"
	"github.com/danielhkuo/quickly-poll/polls"
	"github.com/danielhkuo/quickly-poll/session"
)

// Idle per-key limiters are dropped after this long
const limiterIdleTTL = 10 * time.Minute

func NewRouter(svc *polls.Service, cfg cliparse.Config, m *metrics.Metrics) http.Handler {
	if m == nil {
		m = metrics.New()
	}
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)
	healthHandler := handlers.NewHealthHandler(time.Now())

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithMetrics(m, pattern, middleware.WithLogging(h)))
	}

	// Votes are limited per session token, falling back to a hashed client IP.
	// The salt lives only as long as the process.
	limiter := middleware.NewRateLimiter(cfg.VoteRateLimit, cfg.VoteBurst, limiterIdleTTL)
	ipSalt := uuid.NewString()
	voteKey := func(r *http.Request) string {
		if token := session.Normalize(r.Header.Get(session.Header)); token != "" {
			return "session:" + token
		}
		return "ip:" + session.HashKey(middleware.GetClientIP(r), ipSalt)
	}

	// Health and metrics
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Poll lifecycle
	handle("POST /polls", pollHandler.CreatePoll)
	handle("GET /polls", pollHandler.ListPolls)
	handle("GET /polls/{id}", pollHandler.GetPoll)
	handle("PATCH /polls/{id}/close", pollHandler.ClosePoll)
	handle("POST /polls/{id}/close", pollHandler.ClosePoll)

	// Voting and results
	handle("POST /polls/{id}/vote", middleware.WithRateLimit(limiter, voteKey, m, votingHandler.SubmitVote))
	handle("GET /polls/{id}/results", resultsHandler.GetResults)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-poll API v1"))
	})

	// Same routes under /api for frontends that proxy a prefix
	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	root.Handle("/", mux)

	return middleware.CORS(cfg.CORSOrigin)(root)
}
