package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// forceAdvanceHandler pushes an order one lifecycle step forward,
// bypassing the timing gates. Demo and support tooling only.
func (s *Server) forceAdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !s.deps.Advancer.ForceStep(id) {
		s.respondWithError(w, http.StatusConflict, "Order cannot be advanced")
		return
	}

	order, _ := s.deps.Orders.GetByID(id)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// dedupOrdersHandler collapses duplicate orders sharing an id or
// checkout session id
func (s *Server) dedupOrdersHandler(w http.ResponseWriter, r *http.Request) {
	s.deps.Orders.Deduplicate()

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"orderCount": len(s.deps.Orders.GetAll()),
		},
	})
}

// runSweepHandler triggers a maintenance sweep outside the ticker cadence
func (s *Server) runSweepHandler(w http.ResponseWriter, r *http.Request) {
	s.deps.Scheduler.RunOnce()

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]string{
			"message": "Sweep completed",
		},
	})
}

// getBreakerStatusHandler reports the gateway client's circuit breaker state
func (s *Server) getBreakerStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Breaker == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "No gateway client configured")
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.deps.Breaker.BreakerMetrics(),
	})
}
