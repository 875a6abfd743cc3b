// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Poll API.

# Route Registration

NewRouter returns the full handler chain (CORS, then routing):

	handler := router.NewRouter(svc, cfg, m)

# Endpoints

Health and metrics:

	GET /health  - Status and uptime
	GET /metrics - Prometheus exposition

Poll lifecycle:

	POST  /polls            - Create poll
	GET   /polls            - List polls, newest first
	GET   /polls/{id}       - Poll with the caller's vote
	PATCH /polls/{id}/close - Close (POST also accepted)

Voting and results:

	POST /polls/{id}/vote    - Cast a vote (rate limited)
	GET  /polls/{id}/results - Current tallies

Every route is also served under /api, e.g. /api/polls/{id}/vote.

# Middleware

Each route is wrapped with metrics and request logging. The vote route is
additionally rate limited per X-Session-Id token, or per hashed client IP
when the header is missing.
*/
package router
