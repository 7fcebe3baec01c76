// internal/api/router.go
package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter exposes the resolver over HTTP.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/archetypes/{buildingId:[0-9]+}", s.getArchetype).Methods("GET")
	r.HandleFunc("/archetypes/batch", s.resolveBatch).Methods("POST")
	r.HandleFunc("/age-classes", s.listAgeClasses).Methods("GET")
	r.HandleFunc("/age-classes/table", s.ageClassTable).Methods("GET")

	return r
}
