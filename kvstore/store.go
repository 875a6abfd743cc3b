// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

// Bucket layout:
//
//	polls/<poll id>                         -> pollDoc (JSON)
//	poll_order/<created_at BE nanos><id>    -> poll id
//	votes/<poll id>/<session id>            -> voteDoc (JSON)
var (
	pollsBucket = []byte("polls")
	orderBucket = []byte("poll_order")
	votesBucket = []byte("votes")
)

var ErrBucketNotFound = errors.New("bucket not found")

type pollDoc struct {
	ID        string          `json:"id"`
	Question  string          `json:"question"`
	Options   []models.Option `json:"options"`
	Closed    bool            `json:"closed"`
	CreatedAt time.Time       `json:"createdAt"`
}

type voteDoc struct {
	OptionID  int       `json:"optionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a polls.Store backed by a bbolt file. Every mutation runs in one
// bolt read-write transaction; bolt allows a single writer at a time.
type Store struct {
	db *bolt.DB
}

var _ polls.Store = (*Store)(nil)

// Open opens or creates the database file at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pollsBucket, orderBucket, votesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func orderKey(createdAt time.Time, id string) []byte {
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(createdAt.UnixNano()))
	return append(key, id...)
}

func bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}
	return b, nil
}

func loadPoll(tx *bolt.Tx, id string) (pollDoc, error) {
	b, err := bucket(tx, pollsBucket)
	if err != nil {
		return pollDoc{}, err
	}
	raw := b.Get([]byte(id))
	if raw == nil {
		return pollDoc{}, polls.ErrNotFound
	}
	var doc pollDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return pollDoc{}, fmt.Errorf("failed to decode poll %s: %w", id, err)
	}
	return doc, nil
}

func storePoll(tx *bolt.Tx, doc pollDoc) error {
	b, err := bucket(tx, pollsBucket)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode poll: %w", err)
	}
	return b.Put([]byte(doc.ID), raw)
}

func (d pollDoc) toModel() models.Poll {
	options := make([]models.Option, len(d.Options))
	copy(options, d.Options)
	return models.Poll{
		ID:         d.ID,
		Question:   d.Question,
		Options:    options,
		TotalVotes: polls.TotalVotes(options),
		Closed:     d.Closed,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func (s *Store) CreatePoll(_ context.Context, poll models.Poll) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		pb, err := bucket(tx, pollsBucket)
		if err != nil {
			return err
		}
		if pb.Get([]byte(poll.ID)) != nil {
			return fmt.Errorf("poll %s already exists", poll.ID)
		}

		doc := pollDoc{
			ID:        poll.ID,
			Question:  poll.Question,
			Options:   poll.Options,
			Closed:    poll.Closed,
			CreatedAt: poll.CreatedAt.UTC(),
		}
		if err := storePoll(tx, doc); err != nil {
			return err
		}

		ob, err := bucket(tx, orderBucket)
		if err != nil {
			return err
		}
		return ob.Put(orderKey(doc.CreatedAt, doc.ID), []byte(doc.ID))
	})
}

func (s *Store) GetPoll(_ context.Context, id string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.View(func(tx *bolt.Tx) error {
		doc, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		poll = doc.toModel()
		return nil
	})
	return poll, err
}

func (s *Store) ListPolls(_ context.Context) ([]models.PollSummary, error) {
	summaries := []models.PollSummary{}
	err := s.db.View(func(tx *bolt.Tx) error {
		ob, err := bucket(tx, orderBucket)
		if err != nil {
			return err
		}

		// Walk the order index backwards: newest first. Keys sharing a timestamp
		// are visited in reverse id order, so collect and fix ties afterwards.
		c := ob.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			doc, err := loadPoll(tx, string(v))
			if err != nil {
				return err
			}
			summaries = append(summaries, models.PollSummary{
				ID:          doc.ID,
				Question:    doc.Question,
				Closed:      doc.Closed,
				TotalVotes:  polls.TotalVotes(doc.Options),
				OptionCount: len(doc.Options),
				CreatedAt:   doc.CreatedAt.UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortTies(summaries)
	return summaries, nil
}

// sortTies orders runs of equal creation time by ascending id
func sortTies(summaries []models.PollSummary) {
	for start := 0; start < len(summaries); {
		end := start + 1
		for end < len(summaries) && summaries[end].CreatedAt.Equal(summaries[start].CreatedAt) {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			summaries[i], summaries[j] = summaries[j], summaries[i]
		}
		start = end
	}
}

func (s *Store) ClosePoll(_ context.Context, id string) (models.Poll, bool, error) {
	var poll models.Poll
	var transitioned bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		doc, err := loadPoll(tx, id)
		if err != nil {
			return err
		}
		if !doc.Closed {
			doc.Closed = true
			transitioned = true
			if err := storePoll(tx, doc); err != nil {
				return err
			}
		}
		poll = doc.toModel()
		return nil
	})
	if err != nil {
		return models.Poll{}, false, err
	}
	return poll, transitioned, nil
}

func (s *Store) CastVote(_ context.Context, vote models.VoteRecord) (models.Poll, error) {
	var poll models.Poll
	err := s.db.Update(func(tx *bolt.Tx) error {
		doc, err := loadPoll(tx, vote.PollID)
		if err != nil {
			return err
		}
		if doc.Closed {
			return polls.ErrPollClosed
		}

		idx := -1
		for i, opt := range doc.Options {
			if opt.ID == vote.OptionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return polls.ErrInvalidOption
		}

		vb, err := bucket(tx, votesBucket)
		if err != nil {
			return err
		}
		pollVotes, err := vb.CreateBucketIfNotExists([]byte(vote.PollID))
		if err != nil {
			return fmt.Errorf("failed to create vote bucket: %w", err)
		}

		sessionKey := []byte(vote.SessionID)
		if raw := pollVotes.Get(sessionKey); raw != nil {
			var existing voteDoc
			if err := json.Unmarshal(raw, &existing); err != nil {
				return fmt.Errorf("failed to decode vote: %w", err)
			}
			return &polls.AlreadyVotedError{OptionID: existing.OptionID}
		}

		raw, err := json.Marshal(voteDoc{OptionID: vote.OptionID, CreatedAt: vote.CreatedAt.UTC()})
		if err != nil {
			return fmt.Errorf("failed to encode vote: %w", err)
		}
		if err := pollVotes.Put(sessionKey, raw); err != nil {
			return fmt.Errorf("failed to store vote: %w", err)
		}

		doc.Options[idx].Votes++
		if err := storePoll(tx, doc); err != nil {
			return err
		}
		poll = doc.toModel()
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}
	return poll, nil
}

func (s *Store) GetVote(_ context.Context, pollID, sessionID string) (models.VoteRecord, bool, error) {
	var (
		vote  models.VoteRecord
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		vb, err := bucket(tx, votesBucket)
		if err != nil {
			return err
		}
		pollVotes := vb.Bucket([]byte(pollID))
		if pollVotes == nil {
			return nil
		}
		raw := pollVotes.Get([]byte(sessionID))
		if raw == nil {
			return nil
		}
		var doc voteDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to decode vote: %w", err)
		}
		vote = models.VoteRecord{
			PollID:    pollID,
			SessionID: sessionID,
			OptionID:  doc.OptionID,
			CreatedAt: doc.CreatedAt.UTC(),
		}
		found = true
		return nil
	})
	if err != nil {
		return models.VoteRecord{}, false, err
	}
	return vote, found, nil
}
