package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PresenceService struct {
	store    contracts.PresenceStore
	interval time.Duration
	chatPath string
	log      *slog.Logger
}

func NewPresenceService(
	log *slog.Logger,
	store contracts.PresenceStore,
	interval time.Duration,
	chatPath string,
) *PresenceService {
	return &PresenceService{
		log:      log,
		store:    store,
		interval: interval,
		chatPath: chatPath,
	}
}

// Snapshot scans all live presence keys and groups them by order. Rooms
// and participant lists are sorted so consecutive frames for the same
// state are identical. Keys that do not parse are skipped.
func (s *PresenceService) Snapshot(ctx context.Context) ([]domain.PresenceEntry, error) {
	ctx, span := tracer.Start(ctx, "PresenceService.Snapshot")
	defer span.End()

	keys, err := s.store.Keys(ctx, domain.RoomPrefix+"_*")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "presence scan failed")
		return nil, err
	}
	presences := make(map[string][]string)
	for _, key := range keys {
		orderID, email, ok := domain.ParsePresenceKey(key)
		if !ok {
			s.log.DebugContext(ctx, "presence - snapshot - unparseable key skipped", "key", key)
			continue
		}
		presences[orderID] = append(presences[orderID], email)
	}
	orderIDs := make([]string, 0, len(presences))
	for orderID := range presences {
		orderIDs = append(orderIDs, orderID)
	}
	sort.Strings(orderIDs)

	entries := make([]domain.PresenceEntry, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		emails := presences[orderID]
		sort.Strings(emails)
		entries = append(entries, domain.PresenceEntry{
			Link: fmt.Sprintf(s.chatPath, orderID),
			Text: fmt.Sprintf("%s (%s)", orderID, strings.Join(emails, ", ")),
		})
	}
	span.SetAttributes(attribute.Int("presence.rooms", len(entries)))
	return entries, nil
}

// Frame serializes one snapshot as a server-sent-events frame.
func Frame(entries []domain.PresenceEntry) ([]byte, error) {
	body, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(body)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, body...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}

// Stream emits presence frames through send until the context is
// cancelled, send fails, or, in one-shot mode, after the first frame.
// Cancellation is cooperative: the loop checks the context before every
// scan and while sleeping, so a disconnect is observed within one
// interval at worst.
func (s *PresenceService) Stream(ctx context.Context, oneShot bool, send func([]byte) error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return nil
		}
		entries, err := s.Snapshot(ctx)
		if err != nil {
			// Store unavailability is fatal to this stream, not the process.
			s.log.ErrorContext(ctx, "presence - stream - snapshot failed", "err", err)
			return err
		}
		frame, err := Frame(entries)
		if err != nil {
			return err
		}
		if err := send(frame); err != nil {
			return err
		}
		if oneShot {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
