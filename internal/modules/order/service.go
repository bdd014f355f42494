// README: Order service submits assembled orders and records reconciliation entries.
package order

import (
	"context"
	"log"
	"time"
)

// Creator sends a payload to the order backend.
type Creator interface {
	Create(ctx context.Context, p Payload) (Result, error)
}

// Recorder keeps track of payments whose order is missing.
type Recorder interface {
	Record(ctx context.Context, u Unrecorded) error
	MarkRecorded(ctx context.Context, confirmationID, backendReference string, at time.Time) (bool, error)
}

// Submission is one attempt to record a paid order.
type Submission struct {
	Payload          Payload
	ConfirmationID   string
	BookingReference string
	// Retry is set when an earlier attempt for the same confirmation failed.
	Retry bool
}

type Service struct {
	client  Creator
	ledger  Recorder
	timeout time.Duration
	now     func() time.Time
}

// NewService wires the backend client. ledger may be nil when no database is configured.
func NewService(client Creator, ledger Recorder, timeout time.Duration) *Service {
	return &Service{client: client, ledger: ledger, timeout: timeout, now: time.Now}
}

// Submit sends the order. On failure the payment confirmation is logged and
// written to the ledger; the caller must not charge again.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	cctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.client.Create(cctx, sub.Payload)
	if err != nil {
		log.Printf("[RECONCILE] action=order_not_recorded payment_confirmation=%s booking_reference=%s retryable=%t msg=payment captured but order creation failed: %v",
			sub.ConfirmationID, sub.BookingReference, IsRetryable(err), err)
		if s.ledger != nil {
			if lerr := s.ledger.Record(context.WithoutCancel(ctx), Unrecorded{
				ConfirmationID:   sub.ConfirmationID,
				BookingReference: sub.BookingReference,
				Payload:          sub.Payload,
				Error:            err.Error(),
				At:               s.now().UTC(),
			}); lerr != nil {
				log.Printf("[RECONCILE] action=ledger_write_failed payment_confirmation=%s msg=%v", sub.ConfirmationID, lerr)
			}
		}
		return Result{}, err
	}

	log.Printf("[ORDER] action=created payment_confirmation=%s booking_reference=%s", sub.ConfirmationID, res.BookingReference)
	if sub.Retry && s.ledger != nil {
		if _, lerr := s.ledger.MarkRecorded(context.WithoutCancel(ctx), sub.ConfirmationID, res.BookingReference, s.now().UTC()); lerr != nil {
			log.Printf("[RECONCILE] action=ledger_close_failed payment_confirmation=%s msg=%v", sub.ConfirmationID, lerr)
		}
	}
	return res, nil
}
