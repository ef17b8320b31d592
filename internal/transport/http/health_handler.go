package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"marketcli/internal/services"
)

// HealthHandler serves liveness probes
type HealthHandler struct {
	service *services.HealthService
}

// NewHealthHandler creates a health handler
func NewHealthHandler(service *services.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Routes returns the health route tree
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	return r
}

// Check returns the current health status
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Check())
}
