package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"chatdesk/internal/app/server/ws"
	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/domain"
	"chatdesk/internal/core/services"
	"chatdesk/pkg/middleware"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ChatHandler struct {
	hub  contracts.Registry
	chat *services.ChatService
}

func NewChatHandler(hub contracts.Registry, chat *services.ChatService) *ChatHandler {
	return &ChatHandler{hub: hub, chat: chat}
}

// Handler runs one chat connection: authorize against the order, upgrade,
// join the room, pump events, and announce the departure on the way out.
// Authorization completes before the upgrade so rejected callers never
// touch the registry.
func (h *ChatHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	span := trace.SpanFromContext(r.Context())

	email, ok := middleware.UserEmail(r.Context())
	if !ok {
		log.InfoContext(r.Context(), "chat handler - anonymous connection rejected")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.email", email))
	orderID := r.PathValue("order_id")

	sess, err := h.chat.Authorize(r.Context(), email, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			log.ErrorContext(r.Context(), "chat handler - authorize - record missing", "order_id", orderID, "email", email, "err", err)
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.ErrorContext(r.Context(), "chat handler - authorize - failed", "order_id", orderID, "email", email, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	switch sess.Role {
	case domain.RoleEmployee:
		log.InfoContext(r.Context(), "chat handler - opening chat stream for employee", "email", email, "order_id", orderID)
	case domain.RoleClient:
		log.InfoContext(r.Context(), "chat handler - opening chat stream for client", "email", email, "order_id", orderID)
	default:
		log.InfoContext(r.Context(), "chat handler - unauthorized connection", "email", email, "order_id", orderID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	span.SetAttributes(
		attribute.String("chat.room", sess.Room),
		attribute.String("chat.role", sess.Role.String()),
	)

	// The session outlives the HTTP request context.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "chat handler - upgrade - ws upgrade failed", "err", err)
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})
	socket := ws.NewWebSocket(ctx, conn)

	client := ws.NewClient(ctx, socket, sess.Room)
	if err := h.hub.Register(client); err != nil {
		log.ErrorContext(r.Context(), "chat handler - register - room subscribe failed", "room", sess.Room, "err", err)
		client.Close()
		return
	}
	// Departure runs in reverse: announce the leave while still joined,
	// then drop out of the registry.
	defer h.hub.Unregister(client)
	defer func() {
		if err := h.chat.AnnounceLeave(sessionCtx, sess); err != nil {
			log.ErrorContext(sessionCtx, "chat handler - leave broadcast failed", "room", sess.Room, "err", err)
		}
		log.InfoContext(sessionCtx, "chat handler - closing chat stream", "email", email, "room", sess.Room)
	}()

	if err := h.chat.AnnounceJoin(ctx, sess); err != nil {
		log.ErrorContext(r.Context(), "chat handler - join broadcast failed", "room", sess.Room, "err", err)
	}

	socket.ReadLoop(func(data []byte) {
		go func(msgData []byte) {
			_ = h.chat.HandleEvent(ctx, sess, msgData)
		}(data)
	})
}
