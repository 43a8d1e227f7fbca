// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/danielhkuo/daily-pick/cliparse"
	"github.com/danielhkuo/daily-pick/handlers"
	"github.com/danielhkuo/daily-pick/middleware"
	"github.com/danielhkuo/daily-pick/poll"
	"github.com/danielhkuo/daily-pick/stream"
)

func NewRouter(svc *poll.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(svc)
	optionHandler := handlers.NewOptionHandler(svc)
	historyHandler := handlers.NewHistoryHandler(svc)
	streamHandler := stream.NewHandler(svc, stream.Options{
		WriteTimeout:   cfg.WriteTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Today's vote
	mux.HandleFunc("GET /api/votes", middleware.WithLogging(voteHandler.GetState))
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(voteHandler.CastVote))

	// Options
	mux.HandleFunc("POST /api/options", middleware.WithLogging(optionHandler.AddOption))
	mux.HandleFunc("POST /api/options/delete", middleware.WithLogging(optionHandler.DeleteOption))
	mux.HandleFunc("DELETE /api/options/{option}", middleware.WithLogging(optionHandler.RemoveOption))

	// Archive and voter directory
	mux.HandleFunc("GET /api/votes/history", middleware.WithLogging(historyHandler.History))
	mux.HandleFunc("GET /api/voters", middleware.WithLogging(historyHandler.Voters))

	// Live updates
	mux.Handle("GET /ws", streamHandler)

	// Root endpoint
	if cfg.StaticDir != "" {
		mux.Handle("GET /", staticHandler(cfg.StaticDir))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("daily-pick API v1"))
		})
	}

	return mux
}

// staticHandler serves files from dir and falls back to index.html for
// paths that do not name a file, so client-side routes load the app
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		info, err := os.Stat(name)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir() && !hasIndex(name)) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func hasIndex(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil
}
