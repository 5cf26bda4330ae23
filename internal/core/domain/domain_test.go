package domain

import "testing"

func TestRoomName(t *testing.T) {
	if got := RoomName("42"); got != "customer-service_42" {
		t.Errorf("RoomName(42) = %q, want customer-service_42", got)
	}
}

func TestPresenceKeyRoundTrip(t *testing.T) {
	room := RoomName("42")
	key := PresenceKey(room, "c@example.com")
	if key != "customer-service_42_c@example.com" {
		t.Fatalf("unexpected key %q", key)
	}
	orderID, email, ok := ParsePresenceKey(key)
	if !ok {
		t.Fatal("expected key to parse")
	}
	if orderID != "42" {
		t.Errorf("orderID = %q, want 42", orderID)
	}
	if email != "c@example.com" {
		t.Errorf("email = %q, want c@example.com", email)
	}
}

func TestParsePresenceKeyRejectsWrongShape(t *testing.T) {
	cases := []string{
		"customer-service_42",                       // missing email
		"customer-service",                          // bare prefix
		"customer-service_42_a_b@example.com",       // underscore in email
		"customer-service_42_x@example.com_leftover",
	}
	for _, key := range cases {
		if _, _, ok := ParsePresenceKey(key); ok {
			t.Errorf("ParsePresenceKey(%q) ok, want not ok", key)
		}
	}
}

func TestRoleString(t *testing.T) {
	if RoleEmployee.String() != "employee" {
		t.Error("RoleEmployee should render as employee")
	}
	if RoleClient.String() != "client" {
		t.Error("RoleClient should render as client")
	}
	if RoleUnauthorized.String() != "unauthorized" {
		t.Error("RoleUnauthorized should render as unauthorized")
	}
}
