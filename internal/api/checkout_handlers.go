package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/devnazarchuk/sneakers-shop/internal/checkout"
	"github.com/devnazarchuk/sneakers-shop/internal/gateway"
	apperrors "github.com/devnazarchuk/sneakers-shop/pkg/errors"
)

type cancelCheckoutRequest struct {
	Signal   string `json:"signal"`
	Referrer string `json:"referrer"`
}

// beginCheckoutHandler opens a gateway session for the current cart
func (s *Server) beginCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Checkout.Begin(r.Context())

	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			s.respondWithError(w, appErr.StatusCode, appErr.Message)
			return
		}

		s.respondWithError(w, http.StatusInternalServerError, "Failed to start checkout")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    result,
	})
}

// checkoutSuccessHandler is the gateway's success return URL
func (s *Server) checkoutSuccessHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	if sessionID == "" {
		s.respondWithError(w, http.StatusBadRequest, "Missing session_id")
		return
	}

	completed := s.deps.Checkout.CompleteSuccess(sessionID)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"sessionId": sessionID,
			"completed": completed,
		},
	})
}

// checkoutCancelHandler reconciles a navigation-boundary signal against
// the active checkout session
func (s *Server) checkoutCancelHandler(w http.ResponseWriter, r *http.Request) {
	var req cancelCheckoutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	defer r.Body.Close()

	cancelled := s.deps.Checkout.Cancel(
		checkout.Signal(req.Signal),
		checkout.ReferrerCategory(req.Referrer),
	)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"cancelled": cancelled,
		},
	})
}

// gatewayWebhookHandler ingests payment gateway webhook events
func (s *Server) gatewayWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	defer r.Body.Close()

	event, err := gateway.ParseWebhookEvent(body)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	s.deps.Checkout.HandleWebhook(event)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}
