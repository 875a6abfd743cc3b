// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite, postgres or bolt (default: sqlite)
  - DatabaseURL: connection string or file path (default: quickly-poll.db)
  - CORSOrigin: allowed origin; empty reflects the caller (default: *)
  - VoteRateLimit: votes per second per session, 0 disables (default: 5)
  - VoteBurst: vote burst per session (default: 10)
  - VoteCacheSize: known-voter cache entries (default: 4096)
  - SeedDemo: create a demo poll on an empty store
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p           Server port
	-t           Database type
	-d           Database URL
	-cors-origin Allowed CORS origin
	-vote-rps    Vote rate limit
	-vote-burst  Vote burst
	-vote-cache  Known-voter cache size
	-seed        Seed a demo poll
	-log-level   Log level
	-c           YAML config file

# Environment Variables

	PORT, DATABASE_TYPE, DATABASE_URL, CORS_ORIGIN, VOTE_RATE_LIMIT,
	VOTE_BURST, VOTE_CACHE_SIZE, SEED_DEMO, LOG_LEVEL, CONFIG_FILE

A .env file in the working directory is loaded first; it never overrides
variables that are already set.

# Config File

	port: 3318
	database:
	  type: bolt
	  url: data/polls.bolt
	corsOrigin: "*"
	votes:
	  rateLimit: 5
	  burst: 10
	  cacheSize: 4096
	seedDemo: true
	logLevel: info

Unknown keys are rejected.

# Precedence

CLI flags, then environment variables, then the config file, then defaults.

# Validation

ParseFlags returns an error for an unknown database type, a port outside
1-65535, negative limits, a zero burst while limiting is enabled, or an
unknown log level.
*/
package cliparse
