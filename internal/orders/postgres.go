package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

type PostgresStore struct {
	db *storage.DB
}

func NewPostgresStore(db *storage.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, user_id, customer_name, customer_email, phone,
	shipping_address, city, state, zip_code,
	subtotal, tax, total, status, order_date`

func (s *PostgresStore) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var stored *domain.Order
	err := s.db.WithinTx(ctx, func(q storage.Querier) error {
		var e2 error
		stored, e2 = s.CreateTx(ctx, q, order)
		return e2
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// CreateTx inserts the order header and all items. The id comes from a
// database sequence so concurrent checkouts can never collide; formatting
// is ORD-<yyyyMMdd>-<six-digit counter>.
func (s *PostgresStore) CreateTx(ctx context.Context, q storage.Querier, order *domain.Order) (*domain.Order, error) {
	var seq int64
	if err := q.QueryRowContext(ctx, `SELECT nextval('order_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next order sequence: %w", err)
	}

	stored := *order
	if stored.OrderDate.IsZero() {
		stored.OrderDate = time.Now()
	}
	if stored.Status == "" {
		stored.Status = domain.OrderStatusPending
	}
	stored.ID = fmt.Sprintf("ORD-%s-%06d", stored.OrderDate.Format("20060102"), seq)

	headerSQL := `INSERT INTO orders (id, user_id, customer_name, customer_email, phone,
	                                  shipping_address, city, state, zip_code,
	                                  subtotal, tax, total, status, order_date)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := q.ExecContext(ctx, headerSQL,
		stored.ID,
		stored.UserID,
		stored.CustomerName,
		stored.CustomerEmail,
		stored.Phone,
		stored.ShippingAddress,
		stored.City,
		stored.State,
		stored.ZipCode,
		stored.Subtotal,
		stored.Tax,
		stored.Total,
		stored.Status.String(),
		stored.OrderDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	itemSQL := `INSERT INTO order_items (order_id, product_id, product_name, product_image,
	                                     product_type, price, quantity, line_total)
	            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range stored.Items {
		_, err := q.ExecContext(ctx, itemSQL,
			stored.ID,
			item.ProductID,
			item.ProductName,
			item.ProductImage,
			item.ProductType,
			item.Price,
			item.Quantity,
			item.LineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	return &stored, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(s.db.Querier().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`
	return s.queryOrders(ctx, query, userID)
}

func (s *PostgresStore) GetRecent(ctx context.Context, count int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC LIMIT $1`
	return s.queryOrders(ctx, query, count)
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC`
	return s.queryOrders(ctx, query)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (bool, error) {
	res, err := s.db.Querier().ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, status.String())
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update order status rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) MarkCancelledTx(ctx context.Context, q storage.Querier, id string) (bool, error) {
	// Guarded so a repeated cancel cannot restock twice.
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status <> $2`,
		id, domain.OrderStatusCancelled.String())
	if err != nil {
		return false, fmt.Errorf("mark order cancelled: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order cancelled rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Querier().QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> $1`,
		domain.OrderStatusCancelled.String()).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query total sales: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) TotalOrderCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Querier().QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("query order count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := s.db.Querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		if err := s.attachItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresStore) attachItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT product_id, product_name, product_image, product_type, price, quantity, line_total
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := s.db.Querier().QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.ProductType,
			&item.Price,
			&item.Quantity,
			&item.LineTotal,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var status string
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Phone,
		&order.ShippingAddress,
		&order.City,
		&order.State,
		&order.ZipCode,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&status,
		&order.OrderDate,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return &order, nil
}
