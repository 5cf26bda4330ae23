package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chatdesk/internal/app/server/handlers"
	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/services"
	"chatdesk/pkg/middleware"
)

type Server struct {
	mux            *http.ServeMux
	addr           string
	name           string
	log            *slog.Logger
	authHandler    *handlers.AuthHandler
	chatHandler    *handlers.ChatHandler
	notifyHandler  *handlers.NotifyHandler
	trackerHandler *handlers.TrackerHandler
	tokenSvc       *services.TokenService
	httpServer     *http.Server
}

func NewServer(
	log *slog.Logger,
	name string,
	addr string,
	userSvc *services.UserService,
	tokenSvc *services.TokenService,
	chatSvc *services.ChatService,
	presenceSvc *services.PresenceService,
	upstream contracts.TrackerUpstream,
	hub contracts.Registry,
) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		addr:           addr,
		name:           name,
		log:            log,
		authHandler:    handlers.NewAuthHandler(userSvc, tokenSvc),
		chatHandler:    handlers.NewChatHandler(hub, chatSvc),
		notifyHandler:  handlers.NewNotifyHandler(chatSvc, presenceSvc),
		trackerHandler: handlers.NewTrackerHandler(chatSvc, upstream),
		tokenSvc:       tokenSvc,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.tokenSvc)

	// Public
	s.mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Protected. The middleware validates the JWT and puts the caller's
	// email in the request context.
	s.mux.Handle("GET /ws/customer-service/{order_id}", auth(http.HandlerFunc(s.chatHandler.Handler)))
	s.mux.Handle("GET /customer-service/notify/", auth(http.HandlerFunc(s.notifyHandler.Handler)))
	s.mux.Handle("GET /mobile-api/my-orders/{order_id}/tracker/", auth(http.HandlerFunc(s.trackerHandler.Handler)))
}

func (s *Server) Start() error {
	handler := middleware.RequestLogger(s.log)(middleware.TracerMiddleware(s.name)(s.mux))
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: handler,
		// No WriteTimeout: the notify stream stays open indefinitely.
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.log.Info("server starting", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
