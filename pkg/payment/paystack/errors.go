package paystack

import "errors"

var (
	// ErrInvalidConfig is returned by NewClient when the secret key is missing
	ErrInvalidConfig = errors.New("invalid paystack configuration")

	// ErrInvalidRequest is returned for 4xx responses other than 401
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the secret key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid secret key")

	// ErrGatewayFailure is returned for 5xx responses and status=false bodies
	ErrGatewayFailure = errors.New("payment gateway failure")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrCircuitOpen is returned without calling Paystack while the breaker is open
	ErrCircuitOpen = errors.New("payment gateway temporarily unavailable")
)

// isClientError reports errors caused by the request itself. They do not count
// against the circuit breaker.
func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrUnauthorized)
}
