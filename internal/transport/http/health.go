package http

import (
	"net/http"

	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/pkg/dto"
)

// HandleHealthCheck answers 200 for healthy and degraded stores and 503
// when storage is unreachable or the task collection has not been loaded.
func (h *HTTPHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health, err := h.service.Health(r.Context())
	if err != nil {
		writeJSON(w, r, http.StatusInternalServerError, dto.NewErr(err.Error()))
		return
	}

	statusCode := http.StatusOK
	if health.Status == service.StatusUnhealthy || !health.Loaded {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, r, statusCode, health)
}
