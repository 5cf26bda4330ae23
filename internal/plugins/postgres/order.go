package postgres

import (
	"context"
	"database/sql"

	"chatdesk/internal/core/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

/*
	-- Orders
	CREATE TABLE orders (
		id                 BIGSERIAL PRIMARY KEY,
		customer_email     TEXT NOT NULL REFERENCES users(email),
		last_contacted_by  TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

func (r *OrderRepo) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidOrderID
	}
	order := &domain.Order{ID: orderID}
	query := `SELECT customer_email, last_contacted_by, created_at FROM orders WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, orderID).
		Scan(&order.CustomerEmail, &order.LastContactedBy, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *OrderRepo) SetLastContactedBy(ctx context.Context, orderID, email string) error {
	if orderID == "" {
		return domain.ErrInvalidOrderID
	}
	query := `UPDATE orders SET last_contacted_by = $2 WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, orderID, email)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
