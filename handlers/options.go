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

type OptionHandler struct {
	svc *poll.Service
}

func NewOptionHandler(svc *poll.Service) *OptionHandler {
	return &OptionHandler{svc: svc}
}

// AddOption handles POST /api/options
func (h *OptionHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	var req models.OptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.svc.AddOption(r.Context(), req.Option, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("option added", "option", req.Option, "date", res.Doc.Date)

	middleware.JSONResponse(w, http.StatusOK, models.OptionsResponse{
		Message: res.Message,
		Options: res.Doc.Options,
		Votes:   res.Doc.Tally,
	})
}

// DeleteOption handles POST /api/options/delete
func (h *OptionHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	var req models.OptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.deleteOption(w, r, req.Option)
}

// RemoveOption handles DELETE /api/options/{option}
func (h *OptionHandler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	h.deleteOption(w, r, r.PathValue("option"))
}

func (h *OptionHandler) deleteOption(w http.ResponseWriter, r *http.Request, label string) {
	res, err := h.svc.DeleteOption(r.Context(), label, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("option deleted", "option", label, "voided", res.Voided)

	middleware.JSONResponse(w, http.StatusOK, models.OptionsResponse{
		Message: res.Message,
		Options: res.Doc.Options,
		Votes:   res.Doc.Tally,
	})
}
