package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/checkout-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса оформления заказа.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.GetProducts)
		r.Post("/checkout", h.OpenCheckout)

		r.Group(func(r chi.Router) {
			r.Use(h.sessionMiddleware.Middleware)

			r.Get("/checkout", h.GetCheckout)
			r.Delete("/checkout", h.ResetCheckout)

			r.Post("/checkout/method", h.SelectMethod)

			r.Put("/checkout/card", h.UpdateCard)
			r.Post("/checkout/card", h.SubmitCard)

			r.Put("/checkout/delivery", h.UpdateDelivery)
			r.Post("/checkout/delivery", h.SubmitDelivery)

			r.Put("/checkout/quantity", h.SetQuantity)
			r.Put("/checkout/installments", h.SetInstallments)

			r.Post("/checkout/back", h.Back)
			r.Post("/checkout/confirm", h.Confirm)
			r.Post("/checkout/retry", h.Retry)
			r.Post("/checkout/finalize", h.Finalize)
			r.Post("/checkout/cancel", h.Cancel)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
