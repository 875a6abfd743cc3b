// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the relational polls.Store, for SQLite and PostgreSQL.

# Opening

	store, err := db.Open(ctx, db.TypeSQLite, "quickly-poll.db")
	store, err := db.Open(ctx, db.TypePostgres, "postgres://...")

Open pings the database and runs CreateSchema, which is safe to call
repeatedly (IF NOT EXISTS). SQLite paths get foreign_keys, busy_timeout, and
WAL pragmas unless the DSN already sets _pragma values.

# Schema

	poll         (id, question, closed, created_at)
	poll_option  (poll_id, id, text, votes)        PK (poll_id, id)
	vote         (poll_id, session_id, option_id, created_at)
	             PK (poll_id, session_id), FK (poll_id, option_id)

Timestamps are Unix nanoseconds (BIGINT) in both dialects.

# Voting

CastVote runs in one transaction:

 1. read the poll row (FOR SHARE on PostgreSQL), reject closed polls
 2. check the option belongs to the poll
 3. INSERT ... ON CONFLICT (poll_id, session_id) DO NOTHING
 4. if nothing was inserted, return the existing vote as *polls.AlreadyVotedError
 5. UPDATE poll_option SET votes = votes + 1

The primary key on vote is what guarantees one vote per session even when
two requests race; the counter update is a single atomic statement.

SQLite runs with one open connection, so transactions queue in-process.
*/
package db
