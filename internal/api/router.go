package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/gateway"
)

// NewRouter creates a chi router with one route per storage operation.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(gw *gateway.Gateway, authEnabled bool, token string) chi.Router {
	h := NewHandler(gw)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/storage/read", h.Read)
	r.Post("/storage/write", h.Write)
	r.Post("/storage/exists", h.Exists)
	r.Post("/storage/delete", h.Delete)
	r.Post("/storage/stat", h.Stat)
	r.Post("/storage/list", h.List)
	r.Post("/storage/create_dir", h.CreateDir)
	r.Post("/storage/copy", h.Copy)
	r.Post("/storage/rename", h.Rename)
	r.Post("/storage/capability", h.Capability)

	return r
}
