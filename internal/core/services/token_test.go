package services

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.GenerateToken("c@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	email, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if email != "c@example.com" {
		t.Errorf("subject = %q, want c@example.com", email)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenService("secret-a").GenerateToken("c@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenService("secret-b").ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	if _, err := NewTokenService("secret").ValidateToken("not.a.jwt"); err == nil {
		t.Error("garbage token should not validate")
	}
}
