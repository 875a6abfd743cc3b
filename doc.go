// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Poll API server.

Quickly Poll is a small polling service: create a question with 2-8 options,
share it, collect one vote per browser session, and watch the tallies. A poll
can be closed at any time, after which it rejects votes but keeps its results.

# Starting the Server

With no configuration the server stores polls in ./quickly-poll.db (SQLite):

	go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."
	go run . -t bolt -d data/polls.bolt -seed

# Configuration

Settings come from flags, environment variables (a .env file is honoured),
or a YAML file given with -c / CONFIG_FILE. See package cliparse.

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or bolt
  - DATABASE_URL (-d): connection string or file path
  - VOTE_RATE_LIMIT, VOTE_BURST: per-session vote limits
  - LOG_LEVEL: debug, info, warn, error

# Architecture

  - polls: Domain core (validation, vote ledger, results, service)
  - db: SQLite / PostgreSQL store
  - kvstore: bbolt store
  - storetest: Conformance suite shared by the stores
  - session: X-Session-Id identity
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, rate limiting, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
