// README: Reconciliation ledger of payments whose order could not be recorded.
package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Unrecorded is a captured payment with no backend order behind it.
type Unrecorded struct {
	ConfirmationID   string
	BookingReference string
	Payload          Payload
	Error            string
	At               time.Time
}

// Ledger writes to the unrecorded_payments table. It uses database/sql so it
// runs on the pgx stdlib driver in production.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Record upserts u by confirmation id, counting attempts.
func (l *Ledger) Record(ctx context.Context, u Unrecorded) error {
	payload, err := json.Marshal(u.Payload)
	if err != nil {
		return fmt.Errorf("ledger: marshal payload: %w", err)
	}
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO unrecorded_payments (
			confirmation_id, booking_reference, payload, last_error, attempts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 1, $5, $5)
		ON CONFLICT (confirmation_id) DO UPDATE
		SET payload = EXCLUDED.payload,
			last_error = EXCLUDED.last_error,
			attempts = unrecorded_payments.attempts + 1,
			updated_at = EXCLUDED.updated_at`,
		u.ConfirmationID,
		u.BookingReference,
		string(payload),
		u.Error,
		u.At,
	)
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", u.ConfirmationID, err)
	}
	return nil
}

// MarkRecorded closes the ledger entry once a retry reached the backend.
// It reports whether an open entry existed.
func (l *Ledger) MarkRecorded(ctx context.Context, confirmationID, backendReference string, at time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx, `
		UPDATE unrecorded_payments
		SET recorded_at = $1,
			backend_reference = $2,
			updated_at = $1
		WHERE confirmation_id = $3 AND recorded_at IS NULL`,
		at,
		backendReference,
		confirmationID,
	)
	if err != nil {
		return false, fmt.Errorf("ledger: mark %s recorded: %w", confirmationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
