// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level and completion (status, duration_ms) at info.

# Metrics

WithMetrics reports the route pattern, final status, and latency of each
request to a RequestObserver:

	mux.HandleFunc(pattern, middleware.WithMetrics(m, pattern, middleware.WithLogging(h)))

# Rate Limiting

A RateLimiter keeps one token bucket per key (session token or hashed client
IP). Over-limit requests get 429 with Retry-After:

	limiter := middleware.NewRateLimiter(5, 10, 10*time.Minute)
	vote := middleware.WithRateLimit(limiter, keyFn, m, handler)

A nil limiter disables limiting.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

An empty origin reflects the request's Origin header. Allows methods
GET, POST, PATCH, OPTIONS with headers Content-Type, X-Session-Id.
Preflight requests are answered with 204.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "validation", "question is required")

Parse JSON request bodies (bounded to MaxBodyBytes, unknown fields rejected):

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to key the vote rate limiter for clients without a session token.
*/
package middleware
