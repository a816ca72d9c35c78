package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/devnazarchuk/sneakers-shop/pkg/circuitbreaker"
	"github.com/devnazarchuk/sneakers-shop/pkg/errors"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
	"github.com/devnazarchuk/sneakers-shop/pkg/retry"
)

// Client is the hosted-payment gateway boundary. The gateway owns its own
// ledger; this client only opens redirect sessions and never reads payment
// state back (that arrives through the webhook).
type Client interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*CheckoutSession, error)
}

// CreateSessionRequest describes one redirect-based payment attempt.
type CreateSessionRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ItemsMeta     string  `json:"items_meta"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	SuccessURL    string  `json:"success_url"`
	CancelURL     string  `json:"cancel_url"`
}

// CheckoutSession is the gateway's answer: a correlation id and where to send
// the user.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Error       string `json:"error,omitempty"`
	Code        string `json:"code,omitempty"`
}

// HTTPClient talks to the gateway over HTTP with retry and a circuit breaker.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	logger      logger.Logger
	retryConfig *retry.RetryConfig
	breaker     *circuitbreaker.CircuitBreaker
}

// NewHTTPClient creates a gateway client.
func NewHTTPClient(baseURL, apiKey string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: log,
		retryConfig: &retry.RetryConfig{
			MaxAttempts:     3,
			BackoffStrategy: retry.NewDefaultExponentialBackoff(),
			Logger:          log,
			RetryableErrors: []error{
				errors.ErrTimeout,
				errors.ErrTemporaryFailure,
				errors.ErrServiceUnavailable,
			},
		},
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			HalfOpenMaxCalls: 2,
		}),
	}
}

// CreateSession opens a checkout session at the gateway.
func (c *HTTPClient) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CheckoutSession, error) {
	if !c.breaker.Allow() {
		return nil, errors.NewGatewayError("payment gateway circuit open", http.StatusServiceUnavailable, true)
	}

	url := fmt.Sprintf("%s/v1/checkout/sessions", c.baseURL)

	var session *CheckoutSession

	retryFunc := func() error {
		body, err := json.Marshal(req)

		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to marshal session request: %v", err))
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))

		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to create request: %v", err))
		}

		httpReq.Header.Set("Content-Type", "application/json")

		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)

		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return errors.NewTimeoutError("gateway request timed out")
			}
			return errors.NewTemporaryError(fmt.Sprintf("failed to reach gateway: %v", err))
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)

		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to read gateway response: %v", err))
		}

		if resp.StatusCode >= 400 {
			if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
				return errors.NewTimeoutError("gateway request timed out")
			}

			if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusInternalServerError {
				return errors.NewTemporaryError(fmt.Sprintf("gateway error: %d", resp.StatusCode))
			}

			return errors.NewGatewayError(fmt.Sprintf("gateway rejected session: %d", resp.StatusCode), resp.StatusCode, false)
		}

		session = &CheckoutSession{}

		if err := json.Unmarshal(respBody, session); err != nil {
			return errors.NewInternalError(fmt.Sprintf("failed to parse gateway response: %v", err))
		}

		if session.Error != "" {
			if session.Code == "TIMEOUT" {
				return errors.NewTimeoutError(session.Error)
			}
			return errors.NewTemporaryError(session.Error)
		}

		return nil
	}

	err := retry.Retry(ctx, retryFunc, c.retryConfig)

	if err != nil {
		c.breaker.Failure()
		c.logger.Error("Failed to create checkout session after retries", "error", err)
		return nil, err
	}

	c.breaker.Success()
	return session, nil
}

// BreakerMetrics exposes the circuit breaker state for the admin surface.
func (c *HTTPClient) BreakerMetrics() map[string]interface{} {
	return c.breaker.GetMetrics()
}
