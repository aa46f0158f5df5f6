package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/vinkla/retouch/internal/transport/handler"
)

func NewRouter(h *handler.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/assets/{id}/process", h.ProcessAsset)
		r.Get("/assets/{id}/variants/{size}", h.RenderVariant)
		r.Post("/assets/{id}/srcset", h.RenderSrcset)
	})

	return r
}
