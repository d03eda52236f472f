package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
)

// Client represents a Paystack REST API client
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new Paystack client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	maxFailures := config.MaxConsecutiveFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "paystack",
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Payment gateway circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Initialize starts a transaction and returns the hosted checkout URL
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if req.Email == "" || req.AmountKobo <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.Currency == "" {
		req.Currency = c.config.Currency
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.config.CallbackURL
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transaction: %w", err)
	}

	var initResp InitializeResponse
	if err := json.Unmarshal(data, &initResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal initialize response: %w", err)
	}
	if initResp.Reference == "" {
		initResp.Reference = req.Reference
	}

	return &initResp, nil
}

// Verify fetches the final state of a transaction by reference
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrInvalidRequest
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}

	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify response: %w", err)
	}

	return &tx, nil
}

// doRequest runs one API call through the circuit breaker and returns the data block
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return data, err
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	endpoint := c.config.BaseURL + path
	logger.Debug("Calling payment gateway", map[string]interface{}{
		"method": method,
		"path":   path,
	})

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetworkError, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", ErrGatewayFailure, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(raw))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, env.Message)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayFailure, resp.StatusCode, env.Message)
	case !env.Status:
		return nil, fmt.Errorf("%w: %s", ErrGatewayFailure, env.Message)
	}

	logger.Debug("Payment gateway call succeeded", map[string]interface{}{
		"method":  method,
		"path":    path,
		"message": env.Message,
	})
	return env.Data, nil
}
