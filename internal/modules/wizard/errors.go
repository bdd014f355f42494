package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentPending   = errors.New("a captured payment is waiting for its order")
	ErrAlreadyPaid      = errors.New("booking already paid")
	ErrNothingToRetry   = errors.New("no captured payment to retry")
	ErrUnknownVehicle   = errors.New("vehicle not offered for this itinerary")
	ErrNoVehicleFits    = errors.New("no vehicle seats this many passengers")
	ErrOrderNotRecorded = errors.New("payment captured but order not recorded")
)

// RedirectError means the requested operation belongs to a stage whose gates
// are not passed yet. To is the stage the caller should show instead.
type RedirectError struct {
	From Stage
	To   Stage
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("stage %s not reachable, continue at %s", e.From, e.To)
}

// OrderNotRecordedError carries what support needs to reconcile a payment
// that has no order behind it.
type OrderNotRecordedError struct {
	ConfirmationID   string
	BookingReference string
	Retryable        bool
	Err              error
}

func (e *OrderNotRecordedError) Error() string {
	return fmt.Sprintf("%v (payment confirmation %s): %v", ErrOrderNotRecorded, e.ConfirmationID, e.Err)
}

func (e *OrderNotRecordedError) Unwrap() error { return e.Err }

func (e *OrderNotRecordedError) Is(target error) bool { return target == ErrOrderNotRecorded }
