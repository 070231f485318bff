package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/storage"
)

type PostgresLedger struct {
	q storage.Querier
}

func NewPostgresLedger(q storage.Querier) *PostgresLedger {
	return &PostgresLedger{q: q}
}

func (l *PostgresLedger) Decrement(ctx context.Context, productID, qty int64) (bool, error) {
	if qty < 0 {
		return false, fmt.Errorf("negative quantity %d", qty)
	}

	query := `UPDATE products
	          SET stock_quantity = GREATEST(0, stock_quantity - $2)
	          WHERE id = $1`

	res, err := l.q.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrement stock rows affected: %w", err)
	}
	return affected > 0, nil
}

func (l *PostgresLedger) DecrementExact(ctx context.Context, q storage.Querier, productID, qty int64) error {
	if q == nil {
		q = l.q
	}
	if qty < 0 {
		return fmt.Errorf("negative quantity %d", qty)
	}

	query := `UPDATE products
	          SET stock_quantity = stock_quantity - $2
	          WHERE id = $1 AND stock_quantity >= $2`

	res, err := q.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: either the product is unknown or stock is short.
	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("probe product: %w", err)
	}
	return ErrInsufficientStock
}

func (l *PostgresLedger) Restock(ctx context.Context, q storage.Querier, productID, qty int64) error {
	if q == nil {
		q = l.q
	}
	if qty < 0 {
		return fmt.Errorf("negative quantity %d", qty)
	}

	query := `UPDATE products SET stock_quantity = stock_quantity + $2 WHERE id = $1`
	res, err := q.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("restock rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
