// README: Payment collaborator contract (what we hand the SDK, what it hands back).
package payment

import (
	"errors"
	"fmt"
	"strings"

	"chauffeur/internal/types"
)

var (
	ErrPaymentFailed = errors.New("payment failed")
	ErrInvalidResult = errors.New("invalid payment result")
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Request is passed to the payment provider's client SDK to open a checkout.
type Request struct {
	Amount           types.Money       `json:"amount"`
	Customer         Customer          `json:"customer"`
	BookingReference string            `json:"booking_reference"`
	Metadata         map[string]string `json:"metadata"`
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the provider's asynchronous answer: a confirmation id on success,
// a human-readable message on failure.
type Result struct {
	Status         Status `json:"status"`
	ConfirmationID string `json:"confirmation_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

func Succeeded(confirmationID string) Result {
	return Result{Status: StatusSucceeded, ConfirmationID: confirmationID}
}

func Failed(message string) Result {
	return Result{Status: StatusFailed, Message: message}
}

// Validate rejects results that are neither a well-formed success nor a failure.
func (r Result) Validate() error {
	switch r.Status {
	case StatusSucceeded:
		if strings.TrimSpace(r.ConfirmationID) == "" {
			return fmt.Errorf("%w: success without confirmation id", ErrInvalidResult)
		}
	case StatusFailed:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidResult, r.Status)
	}
	return nil
}

// Err returns nil for a success and ErrPaymentFailed carrying the provider's message otherwise.
func (r Result) Err() error {
	if r.Status == StatusSucceeded {
		return nil
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		return ErrPaymentFailed
	}
	return fmt.Errorf("%w: %s", ErrPaymentFailed, msg)
}
