package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(CorrelationID)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", h.GetMenu)
		r.Post("/actions", h.HandleAction)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Delete("/items/{itemId}", h.RemoveItem)
			r.Delete("/index/{index}", h.RemoveAt)
		})
	})

	return r
}
