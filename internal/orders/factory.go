package orders

import (
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Factory turns a cart snapshot into an order. Totals are computed here once
// and never recomputed; prices come from the cart lines, not the catalog.
type Factory struct {
	taxRate decimal.Decimal
}

func NewFactory(taxRate decimal.Decimal) *Factory {
	return &Factory{taxRate: taxRate}
}

// Build copies each cart line verbatim into an order item and derives the
// totals: subtotal = sum of line totals, tax = subtotal x rate rounded to
// cents, total = subtotal + tax. The order id is assigned by the store at
// persist time.
func (f *Factory) Build(cart *domain.Cart, customer domain.CustomerInfo, userID *int64) (*domain.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		lineTotal := line.LineTotal()
		items = append(items, domain.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			ProductType:  line.ProductType,
			Price:        line.Price,
			Quantity:     line.Quantity,
			LineTotal:    lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	tax := subtotal.Mul(f.taxRate).Round(2)

	return &domain.Order{
		UserID:          userID,
		CustomerName:    customer.CustomerName,
		CustomerEmail:   customer.CustomerEmail,
		Phone:           customer.Phone,
		ShippingAddress: customer.ShippingAddress,
		City:            customer.City,
		State:           customer.State,
		ZipCode:         customer.ZipCode,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           subtotal.Add(tax),
		Status:          domain.OrderStatusPending,
		OrderDate:       time.Now(),
		Items:           items,
	}, nil
}
