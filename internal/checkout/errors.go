package checkout

import (
	"errors"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/inventory"
	"github.com/fjod/storefront/internal/orders"
)

// FailureKind classifies a checkout error for the transport layer.
type FailureKind int

const (
	// KindValidation: bad input or empty cart. Not retryable.
	KindValidation FailureKind = iota
	// KindNotFound: unknown order/product id. Not retryable.
	KindNotFound
	// KindStockConflict: a decrement could not be applied; the whole
	// checkout was rolled back.
	KindStockConflict
	// KindPersistence: storage failure. Safe to retry the whole checkout
	// since nothing was committed.
	KindPersistence
)

// Classify maps an error from any checkout step onto its failure kind.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrProductUnavailable):
		return KindValidation
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		return KindNotFound
	case errors.Is(err, inventory.ErrInsufficientStock):
		return KindStockConflict
	default:
		return KindPersistence
	}
}
