package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Service is the cart component: Postgres rows are the truth, redis is a
// read-through cache invalidated on every write.
type Service struct {
	store    Store
	cache    Cache
	products catalog.Products
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(store Store, cache Cache, products catalog.Products) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		products: products,
	}
}

func (s *Service) Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(owner.String(), func() (interface{}, error) {

		cached, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.store.Get(ctx, owner)
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, owner, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// GetFresh reads the cart straight from the store, bypassing the cache.
// Money paths use this: a stale cache entry must never rebuild a cart that
// a concurrent checkout already cleared and charged.
func (s *Service) GetFresh(ctx context.Context, owner domain.Owner) (*domain.Cart, error) {
	return s.store.Get(ctx, owner)
}

// AddItem resolves the product at call time and captures the denormalized
// snapshot into the line. The product must exist and be sellable.
func (s *Service) AddItem(ctx context.Context, owner domain.Owner, productID, quantity int64) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.store.AddLine(ctx, domain.CartLine{
		Owner:        owner,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		ProductType:  product.Type,
		Price:        product.Price,
		Quantity:     quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	s.invalidate(owner)
	return line, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, owner domain.Owner, productID, quantity int64) error {
	if err := s.store.UpdateQuantity(ctx, owner, productID, quantity); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, owner domain.Owner, productID int64) error {
	if err := s.store.RemoveLine(ctx, owner, productID); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}

func (s *Service) Clear(ctx context.Context, owner domain.Owner) error {
	if err := s.store.Clear(ctx, owner); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}

// ClearTx removes the cart rows inside the caller's transaction. The cache
// is not touched here; call Invalidate after the transaction commits.
func (s *Service) ClearTx(ctx context.Context, q storage.Querier, owner domain.Owner) error {
	return s.store.ClearTx(ctx, q, owner)
}

// TransferToUser moves the guest cart to the user on login, summing
// quantities when both carts carry the same product.
func (s *Service) TransferToUser(ctx context.Context, sessionToken string, userID int64) error {
	if err := s.store.TransferToUser(ctx, sessionToken, userID); err != nil {
		return err
	}
	s.invalidate(domain.SessionOwner(sessionToken))
	s.invalidate(domain.UserOwner(userID))
	return nil
}

// Invalidate drops the owner's cached cart.
func (s *Service) Invalidate(owner domain.Owner) {
	s.invalidate(owner)
}

func (s *Service) invalidate(owner domain.Owner) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
