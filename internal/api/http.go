// internal/api/http.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"archetype-resolver/internal/archetype"
	apperrors "archetype-resolver/internal/common/errors"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/validation"
	"archetype-resolver/internal/models"
)

// Server serializes every request touching the resolver, which is not safe
// for concurrent use.
type Server struct {
	mu       sync.Mutex
	resolver *archetype.Resolver
	log      logger.Logger
	// checks run by /health, keyed by dependency name.
	checks map[string]func(context.Context) error
}

func NewServer(r *archetype.Resolver, log logger.Logger) *Server {
	return &Server{resolver: r, log: log, checks: map[string]func(context.Context) error{}}
}

// AddCheck registers a dependency probe reported by /health.
func (s *Server) AddCheck(name string, check func(context.Context) error) {
	s.checks[name] = check
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	deps := map[string]string{}
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	body := map[string]interface{}{
		"status":  "ok",
		"factory": s.resolver.Name(),
		"deps":    deps,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

func (s *Server) getArchetype(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["buildingId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	s.mu.Lock()
	a, err := s.resolver.ArchetypeFor(r.Context(), id)
	s.mu.Unlock()
	if err != nil {
		s.writeResolveError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type batchResponse struct {
	RunID             string                               `json:"runId"`
	Archetypes        map[string]*models.ResolvedArchetype `json:"archetypes"`
	FailedBuildingIDs []int                                `json:"failedBuildingIds"`
}

func (s *Server) resolveBatch(w http.ResponseWriter, r *http.Request) {
	var vars map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&vars); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.ValidateResolveInput(vars); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.AsStandardError(err).Details)
		return
	}
	ids := toIDs(vars["buildingIds"])

	s.mu.Lock()
	res, err := archetype.RunBatch(r.Context(), s.resolver, ids, s.log)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	out := batchResponse{
		RunID:             res.RunID,
		Archetypes:        make(map[string]*models.ResolvedArchetype, len(res.Resolved)),
		FailedBuildingIDs: append([]int{}, res.Failed...),
	}
	for id, a := range res.Resolved {
		out.Archetypes[strconv.Itoa(id)] = a
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listAgeClasses(w http.ResponseWriter, r *http.Request) {
	idx := s.resolver.AgeClasses()
	if idx == nil {
		writeError(w, http.StatusNotFound, "factory "+s.resolver.Name()+" does not use age classes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ageClasses": idx.Entries(),
		"contiguous": idx.Contiguous(),
		"problems":   idx.Problems(),
	})
}

func (s *Server) ageClassTable(w http.ResponseWriter, r *http.Request) {
	from, err1 := strconv.Atoi(r.URL.Query().Get("from"))
	to, err2 := strconv.Atoi(r.URL.Query().Get("to"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "from and to must be years")
		return
	}

	s.mu.Lock()
	rows, err := archetype.AgeClassTable(r.Context(), s.resolver, from, to)
	s.mu.Unlock()
	if err != nil {
		s.writeResolveError(w, 0, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) writeResolveError(w http.ResponseWriter, buildingID int, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsLookupError(err):
		status = http.StatusNotFound
	case apperrors.IsConfigurationError(err):
		status = http.StatusUnprocessableEntity
	case apperrors.IsExternalDataError(err):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed", map[string]interface{}{"buildingId": buildingID})
	}
	writeJSON(w, status, map[string]interface{}{
		"error":   stdErr.Message,
		"code":    stdErr.Code,
		"details": stdErr.Details,
	})
}

func toIDs(raw interface{}) []int {
	list, _ := raw.([]interface{})
	ids := make([]int, 0, len(list))
	for _, v := range list {
		if f, ok := v.(float64); ok {
			ids = append(ids, int(f))
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
