package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

// CheckoutService places and cancels orders.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, owner domain.Owner, userID *int64, customer domain.CustomerInfo) (*checkout.Receipt, error)
	CancelOrder(ctx context.Context, orderID string) error
}

type OrdersHandler struct {
	checkout CheckoutService
	orders   orders.Store
	respond  *Responder
}

func NewOrdersHandler(checkoutSvc CheckoutService, store orders.Store, respond *Responder) *OrdersHandler {
	return &OrdersHandler{checkout: checkoutSvc, orders: store, respond: respond}
}

type statusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var customer domain.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(customer.CustomerName) == "" || strings.TrimSpace(customer.CustomerEmail) == "" {
		h.respond.Fail(w, http.StatusBadRequest, "customerName and customerEmail are required")
		return
	}

	receipt, err := h.checkout.PlaceOrder(r.Context(), identity.Owner(), identity.UserID, customer)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Order placed successfully", map[string]any{
		"orderId":   receipt.OrderID,
		"total":     receipt.Total,
		"itemCount": receipt.ItemCount,
	})
}

// UpdateStatus changes an order's status. A move to Cancelled goes through
// the checkout service so the quantities return to stock.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderID == "" {
		h.respond.Fail(w, http.StatusBadRequest, "orderId is required")
		return
	}

	status := domain.OrderStatus(req.Status)
	if !domain.KnownStatus(status) {
		h.respond.Fail(w, http.StatusBadRequest, "unknown status: "+req.Status)
		return
	}

	if status == domain.OrderStatusCancelled {
		if err := h.checkout.CancelOrder(r.Context(), req.OrderID); err != nil {
			h.respond.FailErr(w, err)
			return
		}
		h.respond.OK(w, "Order cancelled", nil)
		return
	}

	changed, err := h.orders.UpdateStatus(r.Context(), req.OrderID, status)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	if !changed {
		h.respond.Fail(w, http.StatusNotFound, "order not found")
		return
	}

	h.respond.OK(w, "Order status updated", nil)
}

func (h *OrdersHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.GetAll(r.Context())
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	h.respond.OK(w, "", orderList(all))
}

func (h *OrdersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	h.respond.OK(w, "", order)
}

func (h *OrdersHandler) GetForUser(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	if identity.UserID == nil {
		h.respond.Fail(w, http.StatusBadRequest, "user identity required")
		return
	}

	userOrders, err := h.orders.GetByUserID(r.Context(), *identity.UserID)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	h.respond.OK(w, "", orderList(userOrders))
}

func (h *OrdersHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil || count < 1 {
		h.respond.Fail(w, http.StatusBadRequest, "count must be a positive integer")
		return
	}
	if count > 100 {
		count = 100
	}

	recent, err := h.orders.GetRecent(r.Context(), count)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	h.respond.OK(w, "", orderList(recent))
}

func (h *OrdersHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	sales, err := h.orders.TotalSales(r.Context())
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}
	count, err := h.orders.TotalOrderCount(r.Context())
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "", map[string]any{
		"totalSales":  sales,
		"totalOrders": count,
	})
}

// orderList keeps the data array non-null for empty result sets.
func orderList(orders []*domain.Order) []*domain.Order {
	if orders == nil {
		return []*domain.Order{}
	}
	return orders
}
