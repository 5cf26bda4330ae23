package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/domain"
	"chatdesk/internal/core/services"
	"chatdesk/pkg/middleware"
)

type TrackerHandler struct {
	chat     *services.ChatService
	upstream contracts.TrackerUpstream
}

func NewTrackerHandler(chat *services.ChatService, upstream contracts.TrackerUpstream) *TrackerHandler {
	return &TrackerHandler{chat: chat, upstream: upstream}
}

// Handler relays the carrier's raw tracking payload for one order. Only
// the order's customer may ask; the upstream call is made once, with no
// retry, and its failure fails this request.
func (h *TrackerHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)

	email, ok := middleware.UserEmail(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	orderID := r.PathValue("order_id")

	owner, err := h.chat.IsOrderOwner(r.Context(), email, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.ErrorContext(r.Context(), "tracker handler - owner check failed", "order_id", orderID, "email", email, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !owner {
		log.InfoContext(r.Context(), "tracker handler - unauthorized tracking request", "order_id", orderID, "email", email)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	log.InfoContext(r.Context(), "tracker handler - order tracking request", "order_id", orderID, "email", email)

	payload, err := h.upstream.Fetch(r.Context(), orderID)
	if err != nil {
		log.ErrorContext(r.Context(), "tracker handler - upstream fetch failed", "order_id", orderID, "err", err)
		http.Error(w, "Upstream failure", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
