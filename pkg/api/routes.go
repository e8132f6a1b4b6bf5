package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the router with routes and middleware installed
func NewRouter(handlers *Handlers) *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)
	router.Use(RecoveryMiddleware)
	return router
}

func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/estimates", handlers.CreateEstimate).Methods(http.MethodPost)
	api.HandleFunc("/methods", handlers.ListMethods).Methods(http.MethodGet)
	api.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		WriteErrorResponse(w, http.StatusNotFound, "Endpoint not found", nil, nil)
	})
}
