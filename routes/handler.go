package routes

import (
	"net/http"

	"pixform/config"
	"pixform/job"
	"pixform/web"

	"github.com/go-playground/validator/v10"
)

// Handler carries the conversion runner and configuration into the HTTP
// boundary. The boundary itself stays a thin translator: it parses and
// validates the multipart request, hands byte buffers to the runner, and
// shapes JSON.
type Handler struct {
	runner    *job.Runner
	cfg       *config.Config
	validator *validator.Validate
}

func New(runner *job.Runner, cfg *config.Config) *Handler {
	return &Handler{
		runner:    runner,
		cfg:       cfg,
		validator: validator.New(),
	}
}

// convertParams is the validated shape of the shared form fields.
type convertParams struct {
	Format string `validate:"required,oneof=webp avif"`
}

// Index serves the embedded front-end page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(web.IndexHTML)
}
