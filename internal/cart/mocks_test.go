package cart

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

// memStore implements Store in memory with the same upsert/merge semantics
// as the Postgres implementation.
type memStore struct {
	mu    sync.Mutex
	lines map[domain.Owner][]domain.CartLine
	err   error // forced error for failure paths
}

func newMemStore() *memStore {
	return &memStore{lines: make(map[domain.Owner][]domain.CartLine)}
}

func (m *memStore) Get(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cart := &domain.Cart{Owner: owner}
	cart.Lines = append(cart.Lines, m.lines[owner]...)
	return cart, nil
}

func (m *memStore) AddLine(_ context.Context, line domain.CartLine) (*domain.CartLine, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.lines[line.Owner] {
		if existing.ProductID == line.ProductID {
			m.lines[line.Owner][i].Quantity += line.Quantity
			stored := m.lines[line.Owner][i]
			return &stored, nil
		}
	}
	m.lines[line.Owner] = append(m.lines[line.Owner], line)
	return &line, nil
}

func (m *memStore) UpdateQuantity(ctx context.Context, owner domain.Owner, productID, qty int64) error {
	if m.err != nil {
		return m.err
	}
	if qty <= 0 {
		return m.RemoveLine(ctx, owner, productID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.lines[owner] {
		if existing.ProductID == productID {
			m.lines[owner][i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *memStore) RemoveLine(_ context.Context, owner domain.Owner, productID int64) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.lines[owner][:0]
	for _, existing := range m.lines[owner] {
		if existing.ProductID != productID {
			kept = append(kept, existing)
		}
	}
	m.lines[owner] = kept
	return nil
}

func (m *memStore) Clear(_ context.Context, owner domain.Owner) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, owner)
	return nil
}

func (m *memStore) ClearTx(ctx context.Context, _ storage.Querier, owner domain.Owner) error {
	return m.Clear(ctx, owner)
}

func (m *memStore) TransferToUser(_ context.Context, sessionToken string, userID int64) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	from := domain.SessionOwner(sessionToken)
	to := domain.UserOwner(userID)
	for _, line := range m.lines[from] {
		merged := false
		for i, existing := range m.lines[to] {
			if existing.ProductID == line.ProductID {
				m.lines[to][i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			line.Owner = to
			m.lines[to] = append(m.lines[to], line)
		}
	}
	delete(m.lines, from)
	return nil
}

// memCache implements Cache; a nil inner map disables storage entirely.
type memCache struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	deletes int
}

func newMemCache() *memCache {
	return &memCache{carts: make(map[string]*domain.Cart)}
}

func (m *memCache) Get(_ context.Context, owner domain.Owner) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.carts[owner.String()]; ok {
		return cart, nil
	}
	return nil, ErrCacheMiss
}

func (m *memCache) Set(_ context.Context, owner domain.Owner, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[owner.String()] = cart
	return nil
}

func (m *memCache) Delete(_ context.Context, owner domain.Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, owner.String())
	m.deletes++
	return nil
}

// stubProducts implements catalog.Products from a fixed set.
type stubProducts struct {
	byID map[int64]*domain.Product
}

func (s *stubProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	if !p.Active {
		return nil, catalog.ErrProductUnavailable
	}
	return p, nil
}
