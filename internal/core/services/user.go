package services

import (
	"context"
	"errors"
	"log/slog"

	"chatdesk/internal/core/domain"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	log  *slog.Logger
	repo domain.UserRepository
}

func NewUserService(log *slog.Logger, repo domain.UserRepository) *UserService {
	return &UserService{log: log, repo: repo}
}

// Authenticate checks email+password and returns the user on success.
// Lookup failures and bad passwords collapse into ErrInvalidCredentials so
// the response does not reveal which one failed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.log.ErrorContext(ctx, "user - authenticate - lookup failed", "email", email, "err", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
