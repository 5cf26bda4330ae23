package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"chatdesk/internal/core/domain"
	"chatdesk/internal/core/services"
	"chatdesk/pkg/middleware"
)

// oneShotQuery is the literal query string that selects single-frame mode
// on the notify stream.
const oneShotQuery = "nopoll"

type NotifyHandler struct {
	chat     *services.ChatService
	presence *services.PresenceService
}

func NewNotifyHandler(chat *services.ChatService, presence *services.PresenceService) *NotifyHandler {
	return &NotifyHandler{chat: chat, presence: presence}
}

// Handler streams presence snapshots to an employee as server-sent events
// until the client disconnects, or exactly once in one-shot mode.
func (h *NotifyHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)

	email, ok := middleware.UserEmail(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.chat.LookupUser(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !user.IsEmployee {
		log.InfoContext(r.Context(), "notify handler - unauthorized notify stream", "email", email, "params", r.URL.RawQuery)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.ErrorContext(r.Context(), "notify handler - response writer cannot stream")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	log.InfoContext(r.Context(), "notify handler - opening notify stream", "email", email, "params", r.URL.RawQuery)

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	oneShot := r.URL.RawQuery == oneShotQuery

	// r.Context() is cancelled the moment the client disconnects; the
	// stream loop observes it before the next frame.
	err = h.presence.Stream(r.Context(), oneShot, func(frame []byte) error {
		if _, err := w.Write(frame); err != nil {
			return err
		}
		flusher.Flush()
		log.InfoContext(r.Context(), "notify handler - broadcasting presence info", "email", email)
		return nil
	})
	if err != nil {
		log.ErrorContext(r.Context(), "notify handler - stream ended with error", "email", email, "err", err)
		return
	}
	log.InfoContext(r.Context(), "notify handler - closing notify stream", "email", email)
}
