package api

import (
	"batch-route-service/internal/api/handlers"
	"batch-route-service/internal/ports"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware
// of concrete adapters).
func NewRouter(
	router ports.Router,
	repo ports.ODPairRepository,
	runs ports.BatchRunStore,
	newPool func(workers int) (ports.WorkerPool, error),
) http.Handler {
	mux := http.NewServeMux()

	batchHandler := &handlers.BatchHandler{
		Router:  router,
		Repo:    repo,
		Runs:    runs,
		NewPool: newPool,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/batch", batchHandler.Route)

	return loggingMiddleware(mux)
}
