package inventory

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/storage"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger owns per-product stock counts. Every mutation is a single atomic
// read-modify-write statement; a separate read-then-write is a correctness
// bug under concurrent checkouts.
type Ledger interface {
	// Decrement reduces stock by qty, flooring at zero. It never blocks the
	// sale and reports whether the product exists at all.
	Decrement(ctx context.Context, productID, qty int64) (bool, error)

	// DecrementExact reduces stock by qty only when that much is available.
	// ErrInsufficientStock otherwise. This is the checkout contract: a
	// shortfall aborts the whole operation instead of overselling.
	DecrementExact(ctx context.Context, q storage.Querier, productID, qty int64) error

	// Restock returns qty units, e.g. when an order is cancelled.
	Restock(ctx context.Context, q storage.Querier, productID, qty int64) error
}
