package orders

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// Store persists orders with their items as one unit and serves the read
// paths with items eagerly attached.
type Store interface {
	// Create persists header and items in one transaction and returns the
	// stored order including its assigned id. CreateTx does the same inside
	// a caller's transaction.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	CreateTx(ctx context.Context, q storage.Querier, order *domain.Order) (*domain.Order, error)

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
	GetRecent(ctx context.Context, count int) ([]*domain.Order, error)
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus changes status only; false when the id is unknown.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (bool, error)

	// MarkCancelledTx flips the order to Cancelled unless it already is;
	// false means no transition happened (unknown id or already cancelled).
	MarkCancelledTx(ctx context.Context, q storage.Querier, id string) (bool, error)

	// TotalSales excludes cancelled orders.
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	TotalOrderCount(ctx context.Context) (int64, error)
}
