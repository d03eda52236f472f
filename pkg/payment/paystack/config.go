package paystack

import "time"

const (
	DefaultBaseURL  = "https://api.paystack.co"
	DefaultCurrency = "NGN"
)

// Config represents the configuration for the Paystack client
type Config struct {
	// SecretKey is sent as the bearer token on every call
	SecretKey string

	BaseURL string

	// CallbackURL is where Paystack redirects the customer after payment.
	// A request may override it.
	CallbackURL string

	Currency string
	Timeout  time.Duration

	// Breaker trips after this many consecutive gateway failures. Zero means 5.
	MaxConsecutiveFailures uint32
	// BreakerCooldown is how long the breaker stays open. Zero means 30s.
	BreakerCooldown time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxConsecutiveFailures == 0 {
		c.MaxConsecutiveFailures = 5
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
	return nil
}
