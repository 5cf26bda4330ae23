package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"chatdesk/internal/core/contracts"
	"chatdesk/internal/core/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fakeOrderRepo struct {
	orders        map[string]*domain.Order
	lastContacted map[string]string
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if o, ok := f.orders[orderID]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) SetLastContactedBy(ctx context.Context, orderID, email string) error {
	if _, ok := f.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	if f.lastContacted == nil {
		f.lastContacted = make(map[string]string)
	}
	f.lastContacted[orderID] = email
	return nil
}

type fakeRegistry struct {
	broadcasts []broadcastCall
}

type broadcastCall struct {
	room string
	data []byte
}

func (f *fakeRegistry) Register(c contracts.Client) error { return nil }
func (f *fakeRegistry) Unregister(c contracts.Client)     {}
func (f *fakeRegistry) Broadcast(ctx context.Context, room string, data []byte) error {
	f.broadcasts = append(f.broadcasts, broadcastCall{room: room, data: data})
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newChatFixture() (*ChatService, *fakeOrderRepo, *fakeRegistry, *fakePresenceStore) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"emp@shop.example":  {Email: "emp@shop.example", FullName: "Eve Employee", IsEmployee: true},
		"c@example.com":     {Email: "c@example.com", FullName: "Cathy Customer"},
		"other@example.com": {Email: "other@example.com", FullName: "Otto Other"},
	}}
	orders := &fakeOrderRepo{orders: map[string]*domain.Order{
		"42": {ID: "42", CustomerEmail: "c@example.com"},
	}}
	registry := &fakeRegistry{}
	store := &fakePresenceStore{}
	svc := NewChatService(slog.Default(), users, orders, store, registry, passthroughTx{})
	return svc, orders, registry, store
}

func TestAuthorizeEmployee(t *testing.T) {
	svc, orders, _, _ := newChatFixture()

	sess, err := svc.Authorize(context.Background(), "emp@shop.example", "42")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if sess.Role != domain.RoleEmployee {
		t.Errorf("role = %v, want employee", sess.Role)
	}
	if sess.Room != "customer-service_42" {
		t.Errorf("room = %q", sess.Room)
	}
	if orders.lastContacted["42"] != "emp@shop.example" {
		t.Error("employee connect should record last contacted by")
	}
}

func TestAuthorizeClient(t *testing.T) {
	svc, orders, _, _ := newChatFixture()

	sess, err := svc.Authorize(context.Background(), "c@example.com", "42")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if sess.Role != domain.RoleClient {
		t.Errorf("role = %v, want client", sess.Role)
	}
	if len(orders.lastContacted) != 0 {
		t.Error("client connect must not touch last contacted by")
	}
}

func TestAuthorizeWrongCustomer(t *testing.T) {
	svc, _, _, _ := newChatFixture()

	sess, err := svc.Authorize(context.Background(), "other@example.com", "42")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if sess.Role != domain.RoleUnauthorized {
		t.Errorf("role = %v, want unauthorized", sess.Role)
	}
}

func TestAuthorizeMissingOrder(t *testing.T) {
	svc, _, _, _ := newChatFixture()

	_, err := svc.Authorize(context.Background(), "c@example.com", "999")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestAuthorizeMissingOrderForEmployee(t *testing.T) {
	svc, orders, _, _ := newChatFixture()

	_, err := svc.Authorize(context.Background(), "emp@shop.example", "999")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
	if len(orders.lastContacted) != 0 {
		t.Error("missing order must not record a contact")
	}
}

func TestMessageEventBroadcastsVerbatim(t *testing.T) {
	svc, _, registry, _ := newChatFixture()
	sess, _ := svc.Authorize(context.Background(), "c@example.com", "42")

	raw := []byte(`{"type":"message","message":"hi"}`)
	if err := svc.HandleEvent(context.Background(), sess, raw); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(registry.broadcasts) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(registry.broadcasts))
	}
	b := registry.broadcasts[0]
	if b.room != "customer-service_42" {
		t.Errorf("room = %q", b.room)
	}
	var event domain.ChatEvent
	if err := json.Unmarshal(b.data, &event); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if event.Type != domain.TypeChatMessage {
		t.Errorf("type = %q", event.Type)
	}
	if event.Username != "Cathy Customer" {
		t.Errorf("username = %q", event.Username)
	}
	if event.Message != "hi" {
		t.Errorf("message = %q", event.Message)
	}
}

func TestHeartbeatRefreshesPresenceKey(t *testing.T) {
	svc, _, _, store := newChatFixture()
	sess, _ := svc.Authorize(context.Background(), "c@example.com", "42")

	if err := svc.HandleEvent(context.Background(), sess, []byte(`{"type":"heartbeat"}`)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.refreshs) != 1 {
		t.Fatalf("got %d refreshes, want 1", len(store.refreshs))
	}
	call := store.refreshs[0]
	if call.key != "customer-service_42_c@example.com" {
		t.Errorf("key = %q", call.key)
	}
	if call.ttl != 10*time.Second {
		t.Errorf("ttl = %v, want 10s", call.ttl)
	}
}

func TestUnknownAndMalformedEventsIgnored(t *testing.T) {
	svc, _, registry, store := newChatFixture()
	sess, _ := svc.Authorize(context.Background(), "c@example.com", "42")

	inputs := [][]byte{
		[]byte(`{"type":"typing"}`),
		[]byte(`{"no_type":true}`),
		[]byte(`{"type":"message"}`), // message without a body
		[]byte(`not json at all`),
	}
	for _, raw := range inputs {
		if err := svc.HandleEvent(context.Background(), sess, raw); err != nil {
			t.Errorf("HandleEvent(%s) = %v, want nil", raw, err)
		}
	}
	if len(registry.broadcasts) != 0 {
		t.Errorf("got %d broadcasts, want 0", len(registry.broadcasts))
	}
	if len(store.refreshs) != 0 {
		t.Errorf("got %d refreshes, want 0", len(store.refreshs))
	}
}

func TestAnnounceJoinAndLeave(t *testing.T) {
	svc, _, registry, _ := newChatFixture()
	sess, _ := svc.Authorize(context.Background(), "emp@shop.example", "42")

	if err := svc.AnnounceJoin(context.Background(), sess); err != nil {
		t.Fatalf("AnnounceJoin: %v", err)
	}
	if err := svc.AnnounceLeave(context.Background(), sess); err != nil {
		t.Fatalf("AnnounceLeave: %v", err)
	}
	if len(registry.broadcasts) != 2 {
		t.Fatalf("got %d broadcasts, want 2", len(registry.broadcasts))
	}
	var join, leave domain.ChatEvent
	json.Unmarshal(registry.broadcasts[0].data, &join)
	json.Unmarshal(registry.broadcasts[1].data, &leave)
	if join.Type != domain.TypeChatJoin || join.Username != "Eve Employee" {
		t.Errorf("join event = %+v", join)
	}
	if leave.Type != domain.TypeChatLeave || leave.Username != "Eve Employee" {
		t.Errorf("leave event = %+v", leave)
	}
}

func TestIsOrderOwner(t *testing.T) {
	svc, _, _, _ := newChatFixture()

	owner, err := svc.IsOrderOwner(context.Background(), "c@example.com", "42")
	if err != nil || !owner {
		t.Errorf("owner check = (%v, %v), want (true, nil)", owner, err)
	}
	owner, err = svc.IsOrderOwner(context.Background(), "other@example.com", "42")
	if err != nil || owner {
		t.Errorf("non-owner check = (%v, %v), want (false, nil)", owner, err)
	}
	if _, err := svc.IsOrderOwner(context.Background(), "c@example.com", "999"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order err = %v, want ErrOrderNotFound", err)
	}
}
