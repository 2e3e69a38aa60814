package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"swiftride-rental-service/internal/security"
)

// NewRouter wires the public operation surface.
func NewRouter(handler *RentalHandler, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/rentals").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("", handler.Start).Methods(http.MethodPost)
	api.HandleFunc("", handler.ListAll).Methods(http.MethodGet)
	api.HandleFunc("/active", handler.GetActive).Methods(http.MethodGet)
	api.HandleFunc("/history", handler.History).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/end", handler.End).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}/cancel", handler.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}/force-end", handler.ForceEnd).Methods(http.MethodPost)

	return r
}
