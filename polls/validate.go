// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-poll/models"
)

// NewPoll validates and normalizes a question and its options into a new open poll.
// Blank options are dropped before the 2-8 bound is checked.
func NewPoll(question string, options []string, now time.Time) (models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Poll{}, invalid("question", "question is required")
	}
	if utf8.RuneCountInString(question) > models.MaxQuestionLength {
		return models.Poll{}, invalid("question", "question must be at most %d characters", models.MaxQuestionLength)
	}

	texts := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if utf8.RuneCountInString(opt) > models.MaxOptionLength {
			return models.Poll{}, invalid("options", "options must be at most %d characters", models.MaxOptionLength)
		}
		texts = append(texts, opt)
	}
	if len(texts) < models.MinOptions {
		return models.Poll{}, invalid("options", "at least %d non-empty options are required", models.MinOptions)
	}
	if len(texts) > models.MaxOptions {
		return models.Poll{}, invalid("options", "at most %d options are allowed", models.MaxOptions)
	}

	opts := make([]models.Option, len(texts))
	for i, text := range texts {
		opts[i] = models.Option{ID: i, Text: text}
	}

	return models.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   opts,
		CreatedAt: now.UTC(),
	}, nil
}
