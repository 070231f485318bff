package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// stubTx runs the unit directly and counts rollbacks. The real rollback is
// the database's job; here we only verify a failing step surfaces as one.
type stubTx struct {
	mu         sync.Mutex
	commits    int
	rollbacks  int
	onRollback func()
}

func (t *stubTx) WithinTx(_ context.Context, fn func(q storage.Querier) error) error {
	err := fn(nil)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.rollbacks++
		if t.onRollback != nil {
			t.onRollback()
		}
		return err
	}
	t.commits++
	return nil
}

type stubCarts struct {
	mu          sync.Mutex
	cart        *domain.Cart
	getErr      error
	clears      int
	invalidates int
}

func (c *stubCarts) GetFresh(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.cart != nil {
		return c.cart, nil
	}
	return &domain.Cart{Owner: owner}, nil
}

func (c *stubCarts) ClearTx(_ context.Context, _ storage.Querier, _ domain.Owner) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
	return nil
}

func (c *stubCarts) Invalidate(_ domain.Owner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
}

type memOrders struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*domain.Order
	txErr  error
	lastID string
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*domain.Order)}
}

func (m *memOrders) CreateTx(_ context.Context, _ storage.Querier, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.txErr != nil {
		return nil, m.txErr
	}
	m.seq++
	stored := *order
	stored.ID = fmt.Sprintf("ORD-20250101-%06d", m.seq)
	m.byID[stored.ID] = &stored
	m.lastID = stored.ID
	return &stored, nil
}

func (m *memOrders) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	return m.CreateTx(ctx, nil, order)
}

func (m *memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return order, nil
}

func (m *memOrders) MarkCancelledTx(_ context.Context, _ storage.Querier, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byID[id]
	if !ok || order.Status == domain.OrderStatusCancelled {
		return false, nil
	}
	order.Status = domain.OrderStatusCancelled
	return true, nil
}

func (m *memOrders) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memOrders) GetByUserID(context.Context, int64) ([]*domain.Order, error) { return nil, nil }
func (m *memOrders) GetRecent(context.Context, int) ([]*domain.Order, error)    { return nil, nil }
func (m *memOrders) GetAll(context.Context) ([]*domain.Order, error)            { return nil, nil }
func (m *memOrders) UpdateStatus(context.Context, string, domain.OrderStatus) (bool, error) {
	return false, nil
}
func (m *memOrders) TotalSales(context.Context) (decimal.Decimal, error) { return decimal.Zero, nil }
func (m *memOrders) TotalOrderCount(context.Context) (int64, error)      { return 0, nil }

type loggedEvent struct {
	aggregateID string
	eventType   string
}

type memEventLog struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (l *memEventLog) AppendTx(_ context.Context, _ storage.Querier, aggregateID, eventType string, _ any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, loggedEvent{aggregateID: aggregateID, eventType: eventType})
	return nil
}

func (l *memEventLog) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func (l *memEventLog) all() []loggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]loggedEvent(nil), l.events...)
}
