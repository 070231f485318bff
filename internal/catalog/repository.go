package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available for sale")
)

// Products is the read surface the cart needs from the catalog.
// Consumers define this interface, not the Postgres implementation.
type Products interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Repository struct {
	q storage.Querier
}

func NewRepository(q storage.Querier) *Repository {
	return &Repository{q: q}
}

const productColumns = `id, name, description, image, type, price, stock_quantity, is_active`

// GetByID returns the product or ErrProductNotFound. Inactive products are
// returned as ErrProductUnavailable so callers can tell the two cases apart.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}

	if !p.Active {
		return nil, ErrProductUnavailable
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// Insert is used by seeding and tests; product CRUD lives outside this core.
func (r *Repository) Insert(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, description, image, type, price, stock_quantity, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Image, p.Type, p.Price, p.StockQuantity, p.Active,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Image,
		&p.Type,
		&p.Price,
		&p.StockQuantity,
		&p.Active,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
