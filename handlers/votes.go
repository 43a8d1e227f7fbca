// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/poll"
)

type VoteHandler struct {
	svc *poll.Service
}

func NewVoteHandler(svc *poll.Service) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// GetState handles GET /api/votes
func (h *VoteHandler) GetState(w http.ResponseWriter, r *http.Request) {
	voter := middleware.Voter(r)

	state, err := h.svc.State(r.Context(), voter.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, state)
}

// CastVote handles POST /api/vote
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voter := middleware.Voter(r)
	res, err := h.svc.CastVote(r.Context(), voter, req.Option, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("vote cast", "voter_id", voter.ID, "option", req.Option, "outcome", res.Outcome)

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Message:  res.Message,
		Options:  res.Doc.Options,
		Votes:    res.Doc.Tally,
		HasVoted: true,
		UserVote: req.Option,
	})
}
