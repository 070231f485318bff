package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/storage"
)

// MemoryLedger implements Ledger with in-memory storage. It keeps the same
// atomicity guarantees under the mutex and backs tests that exercise the
// checkout path without a database.
type MemoryLedger struct {
	mu     sync.Mutex
	stocks map[int64]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{stocks: make(map[int64]int64)}
}

// SetStock sets the stock level for a product.
func (l *MemoryLedger) SetStock(productID, qty int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stocks[productID] = qty
}

// Stock returns the current stock level and whether the product exists.
func (l *MemoryLedger) Stock(productID int64) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	qty, ok := l.stocks[productID]
	return qty, ok
}

func (l *MemoryLedger) Decrement(_ context.Context, productID, qty int64) (bool, error) {
	if qty < 0 {
		return false, fmt.Errorf("negative quantity %d", qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stocks[productID]
	if !ok {
		return false, nil
	}
	current -= qty
	if current < 0 {
		current = 0
	}
	l.stocks[productID] = current
	return true, nil
}

func (l *MemoryLedger) DecrementExact(_ context.Context, _ storage.Querier, productID, qty int64) error {
	if qty < 0 {
		return fmt.Errorf("negative quantity %d", qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stocks[productID]
	if !ok {
		return ErrProductNotFound
	}
	if current < qty {
		return ErrInsufficientStock
	}
	l.stocks[productID] = current - qty
	return nil
}

func (l *MemoryLedger) Restock(_ context.Context, _ storage.Querier, productID, qty int64) error {
	if qty < 0 {
		return fmt.Errorf("negative quantity %d", qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stocks[productID]
	if !ok {
		return ErrProductNotFound
	}
	l.stocks[productID] = current + qty
	return nil
}
