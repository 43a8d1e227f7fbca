// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/daily-pick/directory"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/votes"
)

// writeError maps service errors to responses. Rejections carry the
// engine's message; anything else is logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, votes.ErrInvalidInput),
		errors.Is(err, votes.ErrDuplicateOption),
		errors.Is(err, votes.ErrUnknownOption),
		errors.Is(err, directory.ErrInvalidQuery):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "server error")
	}
}
