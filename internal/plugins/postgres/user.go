package postgres

import (
	"context"
	"database/sql"

	"chatdesk/internal/core/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

/*
	-- Users
	CREATE TABLE users (
		email          TEXT PRIMARY KEY,
		full_name      TEXT NOT NULL,
		password_hash  TEXT NOT NULL,
		is_employee    BOOLEAN NOT NULL DEFAULT false,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrInvalidUserID
	}
	user := &domain.User{Email: email}
	query := `SELECT full_name, password_hash, is_employee, created_at FROM users WHERE email = $1`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, email).
		Scan(&user.FullName, &user.PasswordHash, &user.IsEmployee, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
