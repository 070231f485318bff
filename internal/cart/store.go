package cart

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

var ErrLineNotFound = errors.New("line not found in cart")

// Store defines cart persistence keyed by the owner identity.
// Consumers define this interface, not the Postgres implementation.
type Store interface {
	// Get returns the owner's cart; an empty cart when none exists.
	Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error)

	// AddLine upserts a line: an existing (owner, product) line has its
	// quantity increased, otherwise the line is inserted as given.
	// The resulting line is returned.
	AddLine(ctx context.Context, line domain.CartLine) (*domain.CartLine, error)

	// UpdateQuantity sets the line's quantity; qty <= 0 removes the line.
	UpdateQuantity(ctx context.Context, owner domain.Owner, productID, qty int64) error

	// RemoveLine deletes the line; removing an absent line is a no-op.
	RemoveLine(ctx context.Context, owner domain.Owner, productID int64) error

	// Clear deletes every line of the owner; clearing an absent cart is a
	// no-op. ClearTx is the same operation inside a caller's transaction.
	Clear(ctx context.Context, owner domain.Owner) error
	ClearTx(ctx context.Context, q storage.Querier, owner domain.Owner) error

	// TransferToUser reassigns every line owned by the session to the user,
	// summing quantities when the user already carries the same product.
	TransferToUser(ctx context.Context, sessionToken string, userID int64) error
}
