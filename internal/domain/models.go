package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entity. StockQuantity is mutated only through the
// inventory ledger, never by cart operations.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	Type          string          `json:"type"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stockQuantity"`
	Active        bool            `json:"active"`
}

// Owner is the cart owner key: the authenticated user id, or the anonymous
// session token. A cart belongs to exactly one owner.
type Owner string

func UserOwner(userID int64) Owner {
	return Owner(fmt.Sprintf("user:%d", userID))
}

func SessionOwner(token string) Owner {
	return Owner("session:" + token)
}

func (o Owner) String() string { return string(o) }

// CartLine is one product entry in a cart. Name, image, price and type are
// captured when the line is created; later product changes do not affect it.
type CartLine struct {
	Owner        Owner           `json:"-"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	ProductType  string          `json:"productType"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Cart holds at most one line per product for a single owner.
type Cart struct {
	Owner Owner      `json:"-"`
	Lines []CartLine `json:"items"`
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c *Cart) ItemCount() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) String() string { return string(s) }

// KnownStatus reports whether s is one of the recognised order states.
func KnownStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CustomerInfo is the shipping/contact block supplied at checkout.
type CustomerInfo struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	Phone           string `json:"phone"`
	ShippingAddress string `json:"shippingAddress"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
}

// Order totals are fixed at creation and never recomputed. Only Status may
// change afterwards.
type Order struct {
	ID              string          `json:"id"`
	UserID          *int64          `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Phone           string          `json:"phone"`
	ShippingAddress string          `json:"shippingAddress"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	ZipCode         string          `json:"zipCode"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	OrderDate       time.Time       `json:"orderDate"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem is the immutable snapshot of a cart line taken at checkout.
type OrderItem struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage"`
	ProductType  string          `json:"productType"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}
