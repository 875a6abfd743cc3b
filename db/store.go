// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Store is a polls.Store backed by SQLite or PostgreSQL
type Store struct {
	db     *sql.DB
	dbType string
}

var _ polls.Store = (*Store)(nil)

// Open connects, verifies the connection, and creates the schema
func Open(ctx context.Context, dbType, url string) (*Store, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch dbType {
	case TypeSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// SQLite allows one writer; a single connection serialises transactions
		// in-process instead of failing them with SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{db: conn, dbType: dbType}, nil
}

func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&" + sqlitePragmas
	}
	return url + "?" + sqlitePragmas
}

// DB exposes the underlying handle, for tests and diagnostics
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) CreatePoll(ctx context.Context, poll models.Poll) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll (id, question, closed, created_at)
			VALUES ($1, $2, $3, $4)
		`, poll.ID, poll.Question, poll.Closed, poll.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert poll: %w", err)
		}

		for _, opt := range poll.Options {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO poll_option (poll_id, id, text, votes)
				VALUES ($1, $2, $3, $4)
			`, poll.ID, opt.ID, opt.Text, opt.Votes)
			if err != nil {
				return fmt.Errorf("failed to insert option: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	return getPoll(ctx, s.db, id)
}

func getPoll(ctx context.Context, q querier, id string) (models.Poll, error) {
	var poll models.Poll
	var createdAt int64
	err := q.QueryRowContext(ctx, `
		SELECT id, question, closed, created_at
		FROM poll
		WHERE id = $1
	`, id).Scan(&poll.ID, &poll.Question, &poll.Closed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, polls.ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}
	poll.CreatedAt = time.Unix(0, createdAt).UTC()

	rows, err := q.QueryContext(ctx, `
		SELECT id, text, votes
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Votes); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read options: %w", err)
	}

	poll.TotalVotes = polls.TotalVotes(poll.Options)
	return poll, nil
}

func (s *Store) ListPolls(ctx context.Context) ([]models.PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.question, p.closed, p.created_at,
		       COUNT(o.id), COALESCE(SUM(o.votes), 0)
		FROM poll p
		LEFT JOIN poll_option o ON o.poll_id = p.id
		GROUP BY p.id, p.question, p.closed, p.created_at
		ORDER BY p.created_at DESC, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	summaries := []models.PollSummary{}
	for rows.Next() {
		var sum models.PollSummary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &sum.Question, &sum.Closed, &createdAt,
			&sum.OptionCount, &sum.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		sum.CreatedAt = time.Unix(0, createdAt).UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}
	return summaries, nil
}

func (s *Store) ClosePoll(ctx context.Context, id string) (models.Poll, bool, error) {
	var poll models.Poll
	var transitioned bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE poll SET closed = $1
			WHERE id = $2 AND closed = $3
		`, true, id, false)
		if err != nil {
			return fmt.Errorf("failed to close poll: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to close poll: %w", err)
		}
		transitioned = n == 1

		// Distinguishes "already closed" from "missing"
		poll, err = getPoll(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Poll{}, false, err
	}
	return poll, transitioned, nil
}

func (s *Store) CastVote(ctx context.Context, vote models.VoteRecord) (models.Poll, error) {
	var poll models.Poll
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// On PostgreSQL the share lock makes a concurrent close wait for in-flight
		// votes on this poll only. SQLite is already single-writer.
		lockClause := ""
		if s.dbType == TypePostgres {
			lockClause = " FOR SHARE"
		}

		var closed bool
		err := tx.QueryRowContext(ctx,
			`SELECT closed FROM poll WHERE id = $1`+lockClause, vote.PollID).Scan(&closed)
		if errors.Is(err, sql.ErrNoRows) {
			return polls.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query poll: %w", err)
		}
		if closed {
			return polls.ErrPollClosed
		}

		var optionCount int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM poll_option WHERE poll_id = $1 AND id = $2
		`, vote.PollID, vote.OptionID).Scan(&optionCount)
		if err != nil {
			return fmt.Errorf("failed to query option: %w", err)
		}
		if optionCount == 0 {
			return polls.ErrInvalidOption
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO vote (poll_id, session_id, option_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (poll_id, session_id) DO NOTHING
		`, vote.PollID, vote.SessionID, vote.OptionID, vote.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		if inserted == 0 {
			existing, found, err := getVote(ctx, tx, vote.PollID, vote.SessionID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("vote conflict for poll %s without a stored record", vote.PollID)
			}
			return &polls.AlreadyVotedError{OptionID: existing.OptionID}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE poll_option SET votes = votes + 1
			WHERE poll_id = $1 AND id = $2
		`, vote.PollID, vote.OptionID)
		if err != nil {
			return fmt.Errorf("failed to increment votes: %w", err)
		}

		poll, err = getPoll(ctx, tx, vote.PollID)
		return err
	})
	if err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

func (s *Store) GetVote(ctx context.Context, pollID, sessionID string) (models.VoteRecord, bool, error) {
	return getVote(ctx, s.db, pollID, sessionID)
}

func getVote(ctx context.Context, q querier, pollID, sessionID string) (models.VoteRecord, bool, error) {
	vote := models.VoteRecord{PollID: pollID, SessionID: sessionID}
	var createdAt int64
	err := q.QueryRowContext(ctx, `
		SELECT option_id, created_at
		FROM vote
		WHERE poll_id = $1 AND session_id = $2
	`, pollID, sessionID).Scan(&vote.OptionID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoteRecord{}, false, nil
	}
	if err != nil {
		return models.VoteRecord{}, false, fmt.Errorf("failed to query vote: %w", err)
	}
	vote.CreatedAt = time.Unix(0, createdAt).UTC()
	return vote, true, nil
}
