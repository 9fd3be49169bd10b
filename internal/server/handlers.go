package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/aryannaik/bookmark-search/internal/engine"
	"github.com/aryannaik/bookmark-search/internal/metrics"
)

// maxBodyBytes bounds request bodies; page text can be large.
const maxBodyBytes = 8 << 20

type Handlers struct {
	engine  *engine.Engine
	log     *slog.Logger
	metrics *metrics.Registry
}

func NewHandlers(e *engine.Engine, log *slog.Logger, m *metrics.Registry) *Handlers {
	return &Handlers{
		engine:  e,
		log:     log,
		metrics: m,
	}
}

// HandleSearch answers GET /api/search?q=...&callbackId=...
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	callbackID := r.URL.Query().Get("callbackId")
	if callbackID == "" {
		callbackID = uuid.NewString()
	}

	resp, err := h.engine.SearchBookmarks(r.Context(), engine.SearchRequest{
		Text:       r.URL.Query().Get("q"),
		CallbackID: callbackID,
	})
	if err != nil {
		h.writeError(w, "search", err)
		return
	}
	h.writeJSON(w, "search", http.StatusOK, resp)
}

// HandleBookmarks serves POST (add) and DELETE (remove) on /api/bookmarks.
func (h *Handlers) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req engine.AddRequest
		if err := decodeBody(w, r, &req); err != nil {
			h.writeJSON(w, "add", http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := h.engine.AddBookmark(r.Context(), req); err != nil {
			h.writeError(w, "add", err)
			return
		}
		h.writeStatus(w, "add", http.StatusNoContent)

	case http.MethodDelete:
		req := engine.DeleteRequest{URL: r.URL.Query().Get("url")}
		if err := h.engine.DeleteBookmark(r.Context(), req); err != nil {
			h.writeError(w, "delete", err)
			return
		}
		h.writeStatus(w, "delete", http.StatusNoContent)

	default:
		w.Header().Set("Allow", "POST, DELETE")
		h.writeJSON(w, "bookmarks", http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// HandleMessage accepts the worker-style envelope on POST /api/message.
func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, "message", http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var msg engine.Message
	if err := decodeBody(w, r, &msg); err != nil {
		h.writeJSON(w, "message", http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if msg.Action == engine.ActionSearch && msg.CallbackID == "" {
		msg.CallbackID = uuid.NewString()
	}

	resp, err := h.engine.Dispatch(r.Context(), msg)
	if err != nil {
		h.writeError(w, "message", err)
		return
	}
	if resp == nil {
		h.writeStatus(w, "message", http.StatusNoContent)
		return
	}
	h.writeJSON(w, "message", http.StatusOK, resp)
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		h.writeError(w, "status", err)
		return
	}
	h.writeJSON(w, "status", http.StatusOK, stats)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, engine.ErrMalformedRequest):
		h.writeJSON(w, route, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrClosed):
		h.writeJSON(w, route, http.StatusServiceUnavailable, map[string]string{"error": "engine is shutting down"})
	default:
		h.log.Error("request failed", "route", route, "err", err)
		h.writeJSON(w, route, http.StatusInternalServerError, map[string]string{"error": "request failed"})
	}
}

func (h *Handlers) writeStatus(w http.ResponseWriter, route string, status int) {
	w.WriteHeader(status)
	h.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (h *Handlers) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
	h.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
