package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("chat-service")

// ChatSession is the authorized state of one chat connection: who is on
// the wire and which room they joined.
type ChatSession struct {
	Room string
	Role domain.Role
	User *domain.User
}

type ChatService struct {
	userRepo  domain.UserRepository
	orderRepo domain.OrderRepository
	presStore contracts.PresenceStore
	registry  contracts.Registry
	tx        contracts.TxRunner
	log       *slog.Logger
}

func NewChatService(
	log *slog.Logger,
	userRepo domain.UserRepository,
	orderRepo domain.OrderRepository,
	presStore contracts.PresenceStore,
	registry contracts.Registry,
	tx contracts.TxRunner,
) *ChatService {
	return &ChatService{
		log:       log,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		presStore: presStore,
		registry:  registry,
		tx:        tx,
	}
}

// Authorize classifies the caller against the order before any state is
// touched. Employees are recorded as the order's last contact (lookup and
// update commit together); the order's customer becomes a client; anyone
// else is unauthorized. A missing order is an error distinct from an
// unauthorized caller.
func (s *ChatService) Authorize(ctx context.Context, email, orderID string) (*ChatSession, error) {
	ctx, span := tracer.Start(ctx, "ChatService.Authorize", trace.WithAttributes(
		attribute.String("user.email", email),
		attribute.String("order.id", orderID),
	))
	defer span.End()

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "chat - authorize - user lookup failed", "email", email, "err", err)
		return nil, err
	}
	sess := &ChatSession{
		Room: domain.RoomName(orderID),
		Role: domain.RoleUnauthorized,
		User: user,
	}
	if user.IsEmployee {
		if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
			if _, err := s.orderRepo.GetOrderByID(txCtx, orderID); err != nil {
				return err
			}
			return s.orderRepo.SetLastContactedBy(txCtx, orderID, email)
		}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "record contact failed")
			s.log.ErrorContext(ctx, "chat - authorize - record contact failed", "order_id", orderID, "email", email, "err", err)
			return nil, err
		}
		sess.Role = domain.RoleEmployee
		span.SetAttributes(attribute.String("chat.role", sess.Role.String()))
		return sess, nil
	}
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "chat - authorize - order lookup failed", "order_id", orderID, "email", email, "err", err)
		return nil, err
	}
	if order.CustomerEmail == email {
		sess.Role = domain.RoleClient
	}
	span.SetAttributes(attribute.String("chat.role", sess.Role.String()))
	return sess, nil
}

// AnnounceJoin broadcasts the caller's arrival to the room, the caller's
// own connection included.
func (s *ChatService) AnnounceJoin(ctx context.Context, sess *ChatSession) error {
	return s.broadcast(ctx, sess.Room, domain.ChatEvent{
		Type:     domain.TypeChatJoin,
		Username: sess.User.FullName,
	})
}

// AnnounceLeave broadcasts the caller's departure. Called only for
// connections that actually joined.
func (s *ChatService) AnnounceLeave(ctx context.Context, sess *ChatSession) error {
	return s.broadcast(ctx, sess.Room, domain.ChatEvent{
		Type:     domain.TypeChatLeave,
		Username: sess.User.FullName,
	})
}

// HandleEvent dispatches one inbound client event. Unknown types and
// message events without a body are ignored, not errors.
func (s *ChatService) HandleEvent(ctx context.Context, sess *ChatSession, raw []byte) error {
	var in domain.InboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		s.log.DebugContext(ctx, "chat - handle event - malformed event ignored", "room", sess.Room, "err", err)
		return nil
	}
	switch in.Type {
	case domain.TypeMessage:
		if in.Message == "" {
			s.log.DebugContext(ctx, "chat - handle event - message without body ignored", "room", sess.Room)
			return nil
		}
		return s.broadcast(ctx, sess.Room, domain.ChatEvent{
			Type:     domain.TypeChatMessage,
			Username: sess.User.FullName,
			Message:  in.Message,
		})
	case domain.TypeHeartbeat:
		ctx, span := tracer.Start(ctx, "ChatService.Heartbeat")
		defer span.End()
		key := domain.PresenceKey(sess.Room, sess.User.Email)
		if err := s.presStore.Refresh(ctx, key, domain.PresenceTTL); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "presence refresh failed")
			s.log.ErrorContext(ctx, "chat - handle event - presence refresh failed", "key", key, "err", err)
			return err
		}
		return nil
	default:
		return nil
	}
}

func (s *ChatService) broadcast(ctx context.Context, room string, event domain.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.registry.Broadcast(ctx, room, data); err != nil {
		s.log.ErrorContext(ctx, "chat - broadcast - failed", "room", room, "type", event.Type, "err", err)
		return err
	}
	return nil
}

// IsOrderOwner reports whether the caller owns the order; used by the
// tracker relay, which admits only the order's customer.
func (s *ChatService) IsOrderOwner(ctx context.Context, email, orderID string) (bool, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	return order.CustomerEmail == email, nil
}

// LookupUser resolves the authenticated identity for handlers that need
// the full user record (employee checks, display names).
func (s *ChatService) LookupUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.log.ErrorContext(ctx, "chat - lookup user - failed", "email", email, "err", err)
	}
	return user, err
}
