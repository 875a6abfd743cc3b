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

type VotingHandler struct {
	svc *polls.Service
}

func NewVotingHandler(svc *polls.Service) *VotingHandler {
	return &VotingHandler{svc: svc}
}

// SubmitVote handles POST /polls/{id}/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeBadRequest, "poll_id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if req.OptionID == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, CodeValidation, "optionId is required")
		return
	}

	// Without a token the identity is fresh per request, so nothing stops a
	// client from voting again. Accepted; surfaced in debug logs only.
	ident := session.FromRequest(r)
	if ident.Anonymous {
		slog.Debug("vote without session token", "poll_id", pollID)
	}

	view, err := h.svc.SubmitVote(r.Context(), pollID, ident.ID, *req.OptionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}
