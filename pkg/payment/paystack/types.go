package paystack

import (
	"encoding/json"
	"time"
)

// Transaction statuses reported by verify.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// InitializeRequest starts a hosted checkout. AmountKobo is in the minor unit.
type InitializeRequest struct {
	Email       string                 `json:"email"`
	AmountKobo  int64                  `json:"amount"`
	Reference   string                 `json:"reference,omitempty"`
	Currency    string                 `json:"currency,omitempty"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Transaction is the data block of a verify response
type Transaction struct {
	ID              int64           `json:"id"`
	Status          string          `json:"status"`
	Reference       string          `json:"reference"`
	AmountKobo      int64           `json:"amount"`
	Currency        string          `json:"currency"`
	GatewayResponse string          `json:"gateway_response"`
	PaidAt          *time.Time      `json:"paid_at"`
	Channel         string          `json:"channel"`
	Customer        Customer        `json:"customer"`
	Metadata        json.RawMessage `json:"metadata"`
}

// IsSuccessful reports whether the customer was charged
func (t *Transaction) IsSuccessful() bool {
	return t.Status == StatusSuccess
}

// envelope is the shape shared by every Paystack response
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
