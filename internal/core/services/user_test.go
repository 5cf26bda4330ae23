package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"chatdesk/internal/core/domain"

	"golang.org/x/crypto/bcrypt"
)

func newUserFixture(t *testing.T) *UserService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	repo := &fakeUserRepo{users: map[string]*domain.User{
		"c@example.com": {Email: "c@example.com", FullName: "Cathy Customer", PasswordHash: string(hash)},
	}}
	return NewUserService(slog.Default(), repo)
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := newUserFixture(t)

	user, err := svc.Authenticate(context.Background(), "c@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.FullName != "Cathy Customer" {
		t.Errorf("full name = %q", user.FullName)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newUserFixture(t)

	if _, err := svc.Authenticate(context.Background(), "c@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newUserFixture(t)

	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateEmptyInput(t *testing.T) {
	svc := newUserFixture(t)

	if _, err := svc.Authenticate(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}
