package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full HTTP surface.
func NewRouter(cartHandler *CartHandler, ordersHandler *OrdersHandler, respond *Responder) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Get("/count", cartHandler.GetCount)
			r.Post("/add", cartHandler.AddItem)
			r.Post("/update", cartHandler.UpdateQuantity)
			r.Post("/remove", cartHandler.RemoveItem)
			r.Post("/clear", cartHandler.ClearCart)
			r.Post("/transfer", cartHandler.TransferCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/checkout", ordersHandler.Checkout)
			r.Post("/status", ordersHandler.UpdateStatus)
			r.Get("/", ordersHandler.GetAll)
			r.Get("/user", ordersHandler.GetForUser)
			r.Get("/recent/{count}", ordersHandler.GetRecent)
			r.Get("/stats", ordersHandler.GetStats)
			r.Get("/{id}", ordersHandler.GetByID)
		})
	})

	return r
}
