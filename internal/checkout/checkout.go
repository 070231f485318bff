package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/inventory"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// TxRunner runs a function inside one database transaction. Satisfied by
// *storage.DB.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(q storage.Querier) error) error
}

// CartAccess is the slice of the cart service the orchestrator needs. The
// read is the uncached one: checkout must see the store, never the cache.
type CartAccess interface {
	GetFresh(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	ClearTx(ctx context.Context, q storage.Querier, owner domain.Owner) error
	Invalidate(owner domain.Owner)
}

// EventLog appends domain events inside the caller's transaction.
type EventLog interface {
	AppendTx(ctx context.Context, q storage.Querier, aggregateID, eventType string, payload any) error
}

// Receipt is what the buyer gets back from a successful checkout.
type Receipt struct {
	OrderID   string          `json:"orderId"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int64           `json:"itemCount"`
}

// Orchestrator drives a checkout through its states. Every mutating step of
// PlaceOrder runs in a single transaction, so a failure at any point leaves
// the cart, the order tables and the stock exactly as they were.
type Orchestrator struct {
	tx      TxRunner
	carts   CartAccess
	factory *orders.Factory
	orders  orders.Store
	ledger  inventory.Ledger
	outbox  EventLog
}

func NewOrchestrator(tx TxRunner, carts CartAccess, factory *orders.Factory, store orders.Store, ledger inventory.Ledger, outbox EventLog) *Orchestrator {
	return &Orchestrator{
		tx:      tx,
		carts:   carts,
		factory: factory,
		orders:  store,
		ledger:  ledger,
		outbox:  outbox,
	}
}

type orderPlacedEvent struct {
	OrderID string          `json:"orderId"`
	UserID  *int64          `json:"userId,omitempty"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"status"`
}

type orderCancelledEvent struct {
	OrderID string `json:"orderId"`
}

// PlaceOrder converts the owner's cart into a persisted order. The order
// header and items, the exact stock decrements, the cart clear and the
// outbox event all commit together or not at all. The cart cache is
// invalidated only after the commit.
func (o *Orchestrator) PlaceOrder(ctx context.Context, owner domain.Owner, userID *int64, customer domain.CustomerInfo) (*Receipt, error) {
	state := StateValidating

	cart, err := o.carts.GetFresh(ctx, owner)
	if err != nil {
		return nil, o.fail(owner, state, fmt.Errorf("load cart: %w", err))
	}

	order, err := o.factory.Build(cart, customer, userID)
	if err != nil {
		return nil, o.fail(owner, state, err)
	}
	state = StateCartValidated

	var stored *domain.Order
	errTx := o.tx.WithinTx(ctx, func(q storage.Querier) error {
		var errStep error
		stored, errStep = o.orders.CreateTx(ctx, q, order)
		if errStep != nil {
			return fmt.Errorf("persist order: %w", errStep)
		}
		state = StateOrderPersisted

		for _, item := range stored.Items {
			if errStep = o.ledger.DecrementExact(ctx, q, item.ProductID, item.Quantity); errStep != nil {
				return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, errStep)
			}
		}
		state = StateStockAdjusted

		if errStep = o.carts.ClearTx(ctx, q, owner); errStep != nil {
			return fmt.Errorf("clear cart: %w", errStep)
		}
		state = StateCartCleared

		return o.outbox.AppendTx(ctx, q, stored.ID, events.TypeOrderPlaced, orderPlacedEvent{
			OrderID: stored.ID,
			UserID:  stored.UserID,
			Total:   stored.Total,
			Status:  string(stored.Status),
		})
	})
	if errTx != nil {
		return nil, o.fail(owner, state, errTx)
	}

	state = StateComplete
	o.carts.Invalidate(owner)
	log.Printf("checkout %s for owner %s: order %s, total %s", state, owner, stored.ID, stored.Total)

	return &Receipt{
		OrderID:   stored.ID,
		Total:     stored.Total,
		ItemCount: cart.ItemCount(),
	}, nil
}

// CancelOrder flips the order to Cancelled and puts its quantities back on
// the shelf. The status guard makes a repeated cancel a no-op, so stock is
// never restocked twice.
func (o *Orchestrator) CancelOrder(ctx context.Context, orderID string) error {
	order, err := o.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	return o.tx.WithinTx(ctx, func(q storage.Querier) error {
		changed, errStep := o.orders.MarkCancelledTx(ctx, q, orderID)
		if errStep != nil {
			return fmt.Errorf("cancel order %s: %w", orderID, errStep)
		}
		if !changed {
			// Already cancelled; nothing to restock.
			return nil
		}

		for _, item := range order.Items {
			if errStep = o.ledger.Restock(ctx, q, item.ProductID, item.Quantity); errStep != nil {
				return fmt.Errorf("restock product %d: %w", item.ProductID, errStep)
			}
		}

		return o.outbox.AppendTx(ctx, q, orderID, events.TypeOrderCancelled, orderCancelledEvent{OrderID: orderID})
	})
}

func (o *Orchestrator) fail(owner domain.Owner, reached State, err error) error {
	log.Printf("checkout %s for owner %s after %s: %v", StateFailed, owner, reached, err)
	return err
}
