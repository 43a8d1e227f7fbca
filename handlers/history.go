// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/daily-pick/directory"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/poll"
)

type HistoryHandler struct {
	svc *poll.Service
}

func NewHistoryHandler(svc *poll.Service) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// History handles GET /api/votes/history
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{History: docs})
}

// Voters handles GET /api/voters?page=&pageSize=&date=
func (h *HistoryHandler) Voters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "page must be a number")
		return
	}
	pageSize, err := intParam(q.Get("pageSize"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pageSize must be a number")
		return
	}

	result, err := h.svc.Voters(r.Context(), directory.Query{
		Page:     page,
		PageSize: pageSize,
		Date:     q.Get("date"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VotersResponse{
		Voters: result.Voters,
		Total:  result.Total,
	})
}

// intParam parses an optional integer query value; empty means zero
func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
