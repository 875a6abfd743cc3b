// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidOption = errors.New("invalid option")
	ErrAlreadyVoted  = errors.New("already voted on this poll")
)

// ValidationError reports user-correctable input. Message is safe to show as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AlreadyVotedError carries the vote that was recorded first. It matches ErrAlreadyVoted.
type AlreadyVotedError struct {
	OptionID int
}

func (e *AlreadyVotedError) Error() string {
	return ErrAlreadyVoted.Error()
}

func (e *AlreadyVotedError) Is(target error) bool {
	return target == ErrAlreadyVoted
}

// StorageError wraps a persistence failure. Its detail is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// isDomainError reports whether err is one of the outcomes a store is expected to return
func isDomainError(err error) bool {
	var verr *ValidationError
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPollClosed) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrAlreadyVoted) ||
		errors.As(err, &verr)
}

// storageErr wraps anything that isn't a domain outcome
func storageErr(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	var serr *StorageError
	if errors.As(err, &serr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
