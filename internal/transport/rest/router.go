// Package rest exposes the HTTP API: match recommendations, confirmation,
// feedback, and health probes.
package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter assembles the route table.
func NewRouter(matches *MatchHandler, locations *LocationHandler, health *HealthHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/matches/recommendations/{itemID}", matches.Recommendations).Methods(http.MethodGet)
	api.HandleFunc("/matches/confirm", matches.Confirm).Methods(http.MethodPost)
	api.HandleFunc("/matches/feedback", matches.Feedback).Methods(http.MethodPost)
	api.HandleFunc("/locations/geocode", locations.Geocode).Methods(http.MethodGet)
	api.HandleFunc("/locations/reverse", locations.Reverse).Methods(http.MethodGet)
	api.HandleFunc("/items/nearby", locations.Nearby).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
			Code:    "not_found",
			Message: "route not found",
		}})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    "method_not_allowed",
			Message: "method not allowed",
		}})
	})

	return r
}
