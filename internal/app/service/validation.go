package service

import (
	"errors"
	"strings"
)

// ErrInvalidInput is the sentinel behind every InputError
var ErrInvalidInput = errors.New("invalid input")

// InputError is a user-facing validation failure raised before any write
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(message string) error {
	return &InputError{Message: message}
}

// missingFields returns an InputError naming every blank field, or nil
func missingFields(fields map[string]string, order ...string) error {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return invalidInput("Missing " + strings.Join(missing, ", "))
}
