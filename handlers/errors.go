// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-poll/middleware"
	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
)

// Error codes returned in the "code" field
const (
	CodeBadRequest    = "bad_request"
	CodeValidation    = "validation"
	CodeNotFound      = "not_found"
	CodePollClosed    = "poll_closed"
	CodeInvalidOption = "invalid_option"
	CodeAlreadyVoted  = "already_voted"
	CodeInternal      = "internal"
)

// writeError maps a service error onto the HTTP error contract.
// Anything unrecognised is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *polls.ValidationError
		dup  *polls.AlreadyVotedError
	)

	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, verr.Message)
	case errors.As(err, &dup):
		optionID := dup.OptionID
		middleware.JSONResponse(w, http.StatusConflict, models.ErrorResponse{
			Error:         polls.ErrAlreadyVoted.Error(),
			Code:          CodeAlreadyVoted,
			VotedOptionID: &optionID,
		})
	case errors.Is(err, polls.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, CodeAlreadyVoted, polls.ErrAlreadyVoted.Error())
	case errors.Is(err, polls.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, CodeNotFound, "Poll not found")
	case errors.Is(err, polls.ErrPollClosed):
		middleware.ErrorResponse(w, http.StatusForbidden, CodePollClosed, "Poll is closed")
	case errors.Is(err, polls.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeInvalidOption, "Invalid option")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
