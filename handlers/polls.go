// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-poll/middleware"
	"github.com/danielhkuo/quickly-poll/models"
	"github.com/danielhkuo/quickly-poll/polls"
	"github.com/danielhkuo/quickly-poll/session"
)

type PollHandler struct {
	svc *polls.Service
}

func NewPollHandler(svc *polls.Service) *PollHandler {
	return &PollHandler{svc: svc}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	poll, err := h.svc.CreatePoll(r.Context(), req.Question, req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListPolls(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeBadRequest, "poll_id is required")
		return
	}

	ident := session.FromRequest(r)
	view, err := h.svc.GetPoll(r.Context(), pollID, ident.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// ClosePoll handles PATCH /polls/{id}/close. Closing twice is not an error.
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeBadRequest, "poll_id is required")
		return
	}

	poll, err := h.svc.ClosePoll(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Debug("close requested", "poll_id", pollID, "closed", poll.Closed)
	middleware.JSONResponse(w, http.StatusOK, poll)
}
