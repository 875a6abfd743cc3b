// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-poll/models"
)

func TestNewPoll_Valid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	cases := []struct {
		name     string
		question string
		options  []string
		want     []string
	}{
		{"two", "Tea or coffee?", []string{"Tea", "Coffee"}, []string{"Tea", "Coffee"}},
		{"eight", "Pick", []string{"1", "2", "3", "4", "5", "6", "7", "8"}, []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"trimmed", "  Pick  ", []string{"  A ", "B\t"}, []string{"A", "B"}},
		{"blanks dropped", "Pick", []string{"", "A", "   ", "B", "\n"}, []string{"A", "B"}},
		{"nine with one blank", "Pick", []string{"1", "2", "3", "", "4", "5", "6", "7", "8"}, []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"duplicates allowed", "Pick", []string{"Same", "Same"}, []string{"Same", "Same"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)

			poll, err := NewPoll(tc.question, tc.options, now)
			require.NoError(err)
			require.NotEmpty(poll.ID)
			require.Equal(strings.TrimSpace(tc.question), poll.Question)
			require.False(poll.Closed)
			require.Equal(time.UTC, poll.CreatedAt.Location())
			require.True(now.Equal(poll.CreatedAt))
			require.Len(poll.Options, len(tc.want))
			for i, opt := range poll.Options {
				require.Equal(i, opt.ID)
				require.Equal(tc.want[i], opt.Text)
				require.Zero(opt.Votes)
			}
		})
	}
}

func TestNewPoll_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		poll, err := NewPoll("q", []string{"a", "b"}, time.Now())
		require.NoError(t, err)
		require.False(t, seen[poll.ID])
		seen[poll.ID] = true
	}
}

func TestNewPoll_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		question string
		options  []string
		field    string
	}{
		{"empty question", "", []string{"a", "b"}, "question"},
		{"blank question", "   ", []string{"a", "b"}, "question"},
		{"long question", strings.Repeat("q", models.MaxQuestionLength+1), []string{"a", "b"}, "question"},
		{"no options", "q", nil, "options"},
		{"one option", "q", []string{"a"}, "options"},
		{"one after filtering", "q", []string{"a", "", "  "}, "options"},
		{"nine options", "q", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, "options"},
		{"long option", "q", []string{"a", strings.Repeat("o", models.MaxOptionLength+1)}, "options"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPoll(tc.question, tc.options, time.Now())

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Equal(t, tc.field, verr.Field)
			require.NotEmpty(t, verr.Message)
		})
	}
}

func TestNewPoll_LengthCountsRunes(t *testing.T) {
	question := strings.Repeat("é", models.MaxQuestionLength)
	_, err := NewPoll(question, []string{"a", "b"}, time.Now())
	require.NoError(t, err)
}
