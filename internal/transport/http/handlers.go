package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Raisondetr3/tasktango/internal/config"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/internal/transport/http/middleware"
	"github.com/Raisondetr3/tasktango/pkg/dto"
)

type HTTPHandlers struct {
	config   *config.Config
	service  service.HealthService
	tasks    *service.TaskStore
	gatherer prometheus.Gatherer
}

// NewHTTPHandlers wires the task API. /metrics is served only when gatherer
// is non-nil.
func NewHTTPHandlers(cfg *config.Config, healthService service.HealthService, tasks *service.TaskStore, gatherer prometheus.Gatherer) *HTTPHandlers {
	return &HTTPHandlers{
		config:   cfg,
		service:  healthService,
		tasks:    tasks,
		gatherer: gatherer,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods("GET")

	if h.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/tasks", h.HandleListTasks).Methods("GET")
	api.HandleFunc("/tasks", h.HandleAddTask).Methods("POST")
	api.HandleFunc("/tasks/clear-completed", h.HandleClearCompleted).Methods("POST")
	api.HandleFunc("/tasks/{id}/toggle", h.HandleToggleTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", h.HandleDeleteTask).Methods("DELETE")
	api.HandleFunc("/stats", h.HandleStats).Methods("GET")
}

// NewRouter returns the instrumented router with every route registered.
func NewRouter(handlers *HTTPHandlers) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.PanicRecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)

	handlers.SetupRoutes(router)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, dto.NewErr("no route for "+r.URL.Path))
	})

	return router
}
