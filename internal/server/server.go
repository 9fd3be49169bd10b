package server

import (
	"log/slog"
	"net/http"

	"github.com/aryannaik/bookmark-search/internal/engine"
	"github.com/aryannaik/bookmark-search/internal/metrics"
)

// Routes registers every endpoint on a new mux.
func Routes(e *engine.Engine, log *slog.Logger, m *metrics.Registry) *http.ServeMux {
	handlers := NewHandlers(e, log, m)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", handlers.HandleSearch)
	mux.HandleFunc("/api/bookmarks", handlers.HandleBookmarks)
	mux.HandleFunc("/api/message", handlers.HandleMessage)
	mux.HandleFunc("/api/status", handlers.HandleStatus)
	mux.Handle("/metrics", m.Handler())
	return mux
}

func New(port string, e *engine.Engine, log *slog.Logger, m *metrics.Registry) *http.Server {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: Routes(e, log, m),
	}

	log.Info("server listening", "addr", "http://localhost:"+port)
	return srv
}
