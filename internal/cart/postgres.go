package cart

import (
	"context"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

type PostgresStore struct {
	db *storage.DB
}

func NewPostgresStore(db *storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	query := `SELECT product_id, product_name, product_image, product_type, price, quantity
	          FROM cart_items
	          WHERE owner_key = $1
	          ORDER BY created_at DESC`

	rows, err := s.db.Querier().QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	cart := &domain.Cart{Owner: owner}
	for rows.Next() {
		line := domain.CartLine{Owner: owner}
		if err := rows.Scan(
			&line.ProductID,
			&line.ProductName,
			&line.ProductImage,
			&line.ProductType,
			&line.Price,
			&line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cart, nil
}

func (s *PostgresStore) AddLine(ctx context.Context, line domain.CartLine) (*domain.CartLine, error) {
	// Single upsert keeps the one-line-per-(owner, product) invariant under
	// concurrent adds.
	query := `INSERT INTO cart_items (owner_key, product_id, product_name, product_image, product_type, price, quantity)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (owner_key, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	          RETURNING product_name, product_image, product_type, price, quantity`

	stored := domain.CartLine{Owner: line.Owner, ProductID: line.ProductID}
	err := s.db.Querier().QueryRowContext(ctx, query,
		line.Owner.String(),
		line.ProductID,
		line.ProductName,
		line.ProductImage,
		line.ProductType,
		line.Price,
		line.Quantity,
	).Scan(
		&stored.ProductName,
		&stored.ProductImage,
		&stored.ProductType,
		&stored.Price,
		&stored.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cart line: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) UpdateQuantity(ctx context.Context, owner domain.Owner, productID, qty int64) error {
	if qty <= 0 {
		return s.RemoveLine(ctx, owner, productID)
	}

	query := `UPDATE cart_items SET quantity = $3 WHERE owner_key = $1 AND product_id = $2`
	res, err := s.db.Querier().ExecContext(ctx, query, owner.String(), productID, qty)
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart line rows affected: %w", err)
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (s *PostgresStore) RemoveLine(ctx context.Context, owner domain.Owner, productID int64) error {
	query := `DELETE FROM cart_items WHERE owner_key = $1 AND product_id = $2`
	if _, err := s.db.Querier().ExecContext(ctx, query, owner.String(), productID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, owner domain.Owner) error {
	return s.ClearTx(ctx, s.db.Querier(), owner)
}

func (s *PostgresStore) ClearTx(ctx context.Context, q storage.Querier, owner domain.Owner) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE owner_key = $1`, owner.String()); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) TransferToUser(ctx context.Context, sessionToken string, userID int64) error {
	from := domain.SessionOwner(sessionToken)
	to := domain.UserOwner(userID)

	// Merge into the user's cart summing quantities on conflict, then drop
	// the session rows — one transaction so a crash cannot duplicate lines.
	return s.db.WithinTx(ctx, func(q storage.Querier) error {
		merge := `INSERT INTO cart_items (owner_key, product_id, product_name, product_image, product_type, price, quantity)
		          SELECT $2, product_id, product_name, product_image, product_type, price, quantity
		          FROM cart_items WHERE owner_key = $1
		          ON CONFLICT (owner_key, product_id)
		          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

		if _, err := q.ExecContext(ctx, merge, from.String(), to.String()); err != nil {
			return fmt.Errorf("merge session cart into user cart: %w", err)
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE owner_key = $1`, from.String()); err != nil {
			return fmt.Errorf("drop session cart: %w", err)
		}
		return nil
	})
}
