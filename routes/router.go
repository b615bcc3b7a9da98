package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the HTTP surface: the front-end page, the conversion
// endpoints, the static downloads directory and the operational endpoints.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Get("/version", h.Version)

	r.Post("/convert", h.Convert)
	r.Post("/convert-batch", h.ConvertBatch)

	prefix := h.cfg.Store.DownloadPrefix
	fileServer := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(h.cfg.Store.DownloadsDir)))
	r.Get(prefix+"/*", fileServer.ServeHTTP)

	return r
}
