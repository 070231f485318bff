package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
)

// CartService is the slice of the cart component the handlers need. Get is
// the cached browse read; GetFresh hits the store and backs the responses
// to mutations, which must reflect the write they just made.
type CartService interface {
	Get(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	GetFresh(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	AddItem(ctx context.Context, owner domain.Owner, productID, quantity int64) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, owner domain.Owner, productID, quantity int64) error
	RemoveItem(ctx context.Context, owner domain.Owner, productID int64) error
	Clear(ctx context.Context, owner domain.Owner) error
	TransferToUser(ctx context.Context, sessionToken string, userID int64) error
}

type CartHandler struct {
	carts   CartService
	respond *Responder
}

func NewCartHandler(carts CartService, respond *Responder) *CartHandler {
	return &CartHandler{carts: carts, respond: respond}
}

type cartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type transferRequest struct {
	UserID int64 `json:"userId"`
}

// cartData is the data block shared by the cart responses. Items is never
// null; the frontend iterates it unconditionally.
func cartData(cart *domain.Cart) map[string]any {
	items := cart.Lines
	if items == nil {
		items = []domain.CartLine{}
	}
	return map[string]any{
		"items":     items,
		"total":     cart.Subtotal(),
		"itemCount": cart.ItemCount(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	cart, err := h.carts.Get(r.Context(), owner)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "", cartData(cart))
}

func (h *CartHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	cart, err := h.carts.Get(r.Context(), owner)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	// The count endpoint is the one flat response in the API.
	h.respond.writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": cart.ItemCount()})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respond.Fail(w, http.StatusBadRequest, "productId must be positive")
		return
	}

	line, err := h.carts.AddItem(r.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	cart, err := h.carts.GetFresh(r.Context(), owner)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Product added to cart", map[string]any{
		"item":      line,
		"total":     cart.Subtotal(),
		"itemCount": cart.ItemCount(),
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respond.Fail(w, http.StatusBadRequest, "productId must be positive")
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), owner, req.ProductID, req.Quantity); err != nil {
		h.respond.FailErr(w, err)
		return
	}

	cart, err := h.carts.GetFresh(r.Context(), owner)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Cart updated", cartData(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respond.Fail(w, http.StatusBadRequest, "productId must be positive")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), owner, req.ProductID); err != nil {
		h.respond.FailErr(w, err)
		return
	}

	cart, err := h.carts.GetFresh(r.Context(), owner)
	if err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Item removed from cart", cartData(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).Owner()

	if err := h.carts.Clear(r.Context(), owner); err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Cart cleared", cartData(&domain.Cart{Owner: owner}))
}

// TransferCart moves the anonymous session cart to a user account after
// login. Requires the session cookie to still be present.
func (h *CartHandler) TransferCart(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 {
		h.respond.Fail(w, http.StatusBadRequest, "userId must be positive")
		return
	}
	if identity.SessionToken == "" {
		h.respond.Fail(w, http.StatusBadRequest, "no session cart to transfer")
		return
	}

	if err := h.carts.TransferToUser(r.Context(), identity.SessionToken, req.UserID); err != nil {
		h.respond.FailErr(w, err)
		return
	}

	h.respond.OK(w, "Cart transferred", nil)
}
