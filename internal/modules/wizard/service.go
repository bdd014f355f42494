// README: Wizard service drives a session through the three booking stages.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"chauffeur/internal/config"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/order"
	"chauffeur/internal/modules/payment"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/staging"
	"chauffeur/internal/types"
)

type Pricer interface {
	Estimate(pickup, dropoff types.Location, passengers int) pricing.Estimate
}

type OrderSubmitter interface {
	Submit(ctx context.Context, sub order.Submission) (order.Result, error)
}

// LookupInvalidator drops in-flight geocode lookups of a session.
type LookupInvalidator interface {
	Invalidate(session types.ID)
}

// View is what a stage needs to render.
type View struct {
	Stage      Stage            `json:"stage"`
	Requested  Stage            `json:"requested,omitempty"`
	Redirected bool             `json:"redirected"`
	Snapshot   staging.Snapshot `json:"booking"`
	Vehicles   *VehicleOptions  `json:"vehicles,omitempty"`
}

// VehicleOptions is the Stage 2 view. DeadEnd is set when no vehicle seats
// the party and the only way on is back to Stage 1.
type VehicleOptions struct {
	pricing.Estimate
	Selected *booking.VehicleSelection `json:"selected,omitempty"`
	DeadEnd  bool                      `json:"dead_end"`
}

// Outcome is the result of handling a payment event or an order retry.
type Outcome struct {
	Stage                 Stage  `json:"stage"`
	BookingReference      string `json:"booking_reference,omitempty"`
	PaymentConfirmationID string `json:"payment_confirmation_id,omitempty"`
	PaymentCaptured       bool   `json:"payment_captured"`
}

type Service struct {
	store   *staging.Store
	pricing Pricer
	orders  OrderSubmitter
	lookups LookupInvalidator
	cfg     config.BookingConfig
	now     func() time.Time
}

// NewService wires the stage controllers. lookups may be nil.
func NewService(store *staging.Store, pricer Pricer, orders OrderSubmitter, lookups LookupInvalidator, cfg config.BookingConfig) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{store: store, pricing: pricer, orders: orders, lookups: lookups, cfg: cfg, now: time.Now}
}

// NewBookingReference issues the reference handed to the payment provider.
// It stays the booking reference when the backend assigns none.
func NewBookingReference() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// State returns the stage a returning session resumes at.
func (s *Service) State(ctx context.Context, session types.ID) (View, error) {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return View{}, err
	}
	return s.view(Current(snap), Current(snap), snap), nil
}

// Enter navigates to target. A stage whose gates are not passed resolves to
// the first incomplete one; that is reported, not an error.
func (s *Service) Enter(ctx context.Context, session types.ID, target Stage) (View, error) {
	s.invalidateLookups(session)
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return View{}, err
	}
	stage := Resolve(target, snap)
	if stage != target {
		log.Printf("[WIZARD] action=redirect session=%s requested=%s stage=%s", session, target, stage)
	}
	return s.view(target, stage, snap), nil
}

func (s *Service) view(requested, stage Stage, snap staging.Snapshot) View {
	v := View{Stage: stage, Requested: requested, Redirected: requested != stage, Snapshot: snap}
	if stage == StageVehicle {
		opts := s.options(snap)
		v.Vehicles = &opts
	}
	return v
}

// SubmitItinerary is the Stage 1 advance. Storing the itinerary drops any
// vehicle selection and contact made for the previous one.
func (s *Service) SubmitItinerary(ctx context.Context, session types.ID, it booking.Itinerary) (Stage, error) {
	it = booking.NormalizeItinerary(it)
	if err := booking.ValidateItinerary(it); err != nil {
		return StageItinerary, err
	}
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return StageItinerary, err
	}
	if snap.Payment != nil {
		return StageContact, ErrPaymentPending
	}

	s.invalidateLookups(session)
	if err := s.store.SetItinerary(ctx, session, it); err != nil {
		return StageItinerary, err
	}
	log.Printf("[WIZARD] action=itinerary_saved session=%s passengers=%d geocoded=%t", session, it.Passengers, it.Pickup.HasCoordinates() && it.Dropoff.HasCoordinates())
	return StageVehicle, nil
}

// VehicleOptions prices every vehicle that seats the party, pickup to dropoff.
func (s *Service) VehicleOptions(ctx context.Context, session types.ID) (VehicleOptions, error) {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return VehicleOptions{}, err
	}
	if !CanEnter(StageVehicle, snap) {
		return VehicleOptions{}, &RedirectError{From: StageVehicle, To: Resolve(StageVehicle, snap)}
	}
	return s.options(snap), nil
}

func (s *Service) options(snap staging.Snapshot) VehicleOptions {
	it := snap.Itinerary
	est := s.pricing.Estimate(it.Pickup, it.Dropoff, it.Passengers)
	return VehicleOptions{Estimate: est, Selected: snap.Vehicle, DeadEnd: len(est.Quotes) == 0}
}

// SelectVehicle is the Stage 2 advance. Price, distance and duration are
// frozen here and never recomputed.
func (s *Service) SelectVehicle(ctx context.Context, session types.ID, vehicleID string) (booking.VehicleSelection, error) {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return booking.VehicleSelection{}, err
	}
	if !CanEnter(StageVehicle, snap) {
		return booking.VehicleSelection{}, &RedirectError{From: StageVehicle, To: Resolve(StageVehicle, snap)}
	}
	if snap.Payment != nil {
		return booking.VehicleSelection{}, ErrPaymentPending
	}

	opts := s.options(snap)
	if opts.DeadEnd {
		return booking.VehicleSelection{}, ErrNoVehicleFits
	}
	for _, q := range opts.Quotes {
		if q.Vehicle.ID != vehicleID {
			continue
		}
		sel := booking.VehicleSelection{
			VehicleID:        q.Vehicle.ID,
			VehicleName:      q.Vehicle.Name,
			Price:            q.Price,
			DistanceKm:       opts.DistanceKm,
			DurationMin:      opts.DurationMin,
			BookingReference: NewBookingReference(),
		}
		s.invalidateLookups(session)
		if err := s.store.SetVehicle(ctx, session, sel); err != nil {
			return booking.VehicleSelection{}, err
		}
		log.Printf("[WIZARD] action=vehicle_selected session=%s vehicle=%s price=%.2f distance_km=%.1f", session, sel.VehicleID, sel.Price, sel.DistanceKm)
		return sel, nil
	}
	return booking.VehicleSelection{}, fmt.Errorf("%w: %q", ErrUnknownVehicle, vehicleID)
}

// ValidateContact is the Stage 3 gate that enables payment. Nothing is stored.
func (s *Service) ValidateContact(ctx context.Context, session types.ID, c booking.ContactInfo) (booking.ContactInfo, error) {
	if _, err := s.contactStage(ctx, session); err != nil {
		return booking.ContactInfo{}, err
	}
	c = booking.NormalizeContact(c)
	if err := booking.ValidateContact(c); err != nil {
		return booking.ContactInfo{}, err
	}
	return c, nil
}

// PaymentRequest builds what the payment provider needs to charge the frozen
// price. It refuses once a payment has been captured for this booking.
func (s *Service) PaymentRequest(ctx context.Context, session types.ID, c booking.ContactInfo) (payment.Request, error) {
	snap, err := s.contactStage(ctx, session)
	if err != nil {
		return payment.Request{}, err
	}
	if snap.Payment != nil {
		return payment.Request{}, ErrAlreadyPaid
	}
	c = booking.NormalizeContact(c)
	if err := booking.ValidateContact(c); err != nil {
		return payment.Request{}, err
	}
	reference, err := s.bookingReference(ctx, session, snap.Vehicle)
	if err != nil {
		return payment.Request{}, err
	}
	return payment.NewRequest(*snap.Itinerary, *snap.Vehicle, c, reference, s.cfg.Currency), nil
}

// HandlePaymentResult sequences the payment event before the order. A failed
// payment changes nothing. A captured payment is stored before anything else
// so that a failing order can be retried without charging again.
func (s *Service) HandlePaymentResult(ctx context.Context, session types.ID, c booking.ContactInfo, res payment.Result) (Outcome, error) {
	if err := res.Validate(); err != nil {
		return Outcome{Stage: StageContact}, err
	}
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return Outcome{Stage: StageContact}, err
	}

	if res.Status == payment.StatusFailed {
		if !CanEnter(StageContact, snap) {
			return Outcome{}, &RedirectError{From: StageContact, To: Resolve(StageContact, snap)}
		}
		log.Printf("[PAYMENT] action=failed session=%s msg=%s", session, res.Message)
		return Outcome{Stage: StageContact}, res.Err()
	}

	if done := snap.Confirmation; done != nil && done.PaymentConfirmationID == res.ConfirmationID {
		log.Printf("[PAYMENT] action=replayed session=%s payment_confirmation=%s booking_reference=%s", session, res.ConfirmationID, done.BookingReference)
		return Outcome{
			Stage:                 StageCompleted,
			BookingReference:      done.BookingReference,
			PaymentConfirmationID: done.PaymentConfirmationID,
			PaymentCaptured:       true,
		}, nil
	}

	s.invalidateLookups(session)
	if !CanEnter(StageContact, snap) {
		log.Printf("[RECONCILE] action=payment_without_booking session=%s payment_confirmation=%s msg=payment captured for a session with no staged booking", session, res.ConfirmationID)
		return Outcome{PaymentCaptured: true, PaymentConfirmationID: res.ConfirmationID}, &RedirectError{From: StageContact, To: Resolve(StageContact, snap)}
	}

	retry := false
	if p := snap.Payment; p != nil {
		if p.ConfirmationID != res.ConfirmationID {
			log.Printf("[RECONCILE] action=duplicate_capture session=%s payment_confirmation=%s pending_confirmation=%s msg=second payment captured for one booking", session, res.ConfirmationID, p.ConfirmationID)
			return Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: p.ConfirmationID}, ErrAlreadyPaid
		}
		retry = true
	}

	var captured staging.CapturedPayment
	if snap.Payment != nil {
		captured = *snap.Payment
	} else {
		reference, err := s.bookingReference(ctx, session, snap.Vehicle)
		if err != nil {
			log.Printf("[RECONCILE] action=capture_not_staged session=%s payment_confirmation=%s msg=%v", session, res.ConfirmationID, err)
			return Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: res.ConfirmationID}, err
		}
		captured = staging.CapturedPayment{
			ConfirmationID:   res.ConfirmationID,
			BookingReference: reference,
			CapturedAt:       s.now().UTC(),
		}
	}
	if err := s.store.SetPayment(ctx, session, captured); err != nil {
		log.Printf("[RECONCILE] action=capture_not_staged session=%s payment_confirmation=%s msg=%v", session, captured.ConfirmationID, err)
		return Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: captured.ConfirmationID}, err
	}
	log.Printf("[PAYMENT] action=captured session=%s payment_confirmation=%s booking_reference=%s", session, captured.ConfirmationID, captured.BookingReference)

	c = booking.NormalizeContact(c)
	if err := booking.ValidateContact(c); err != nil {
		return Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: captured.ConfirmationID}, err
	}
	if err := s.store.SetContact(ctx, session, c); err != nil {
		return Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: captured.ConfirmationID}, err
	}
	return s.submit(ctx, session, *snap.Itinerary, *snap.Vehicle, c, captured, retry)
}

// RetryOrder submits the order again for a payment that is already captured.
// contact, when given, replaces the stored one.
func (s *Service) RetryOrder(ctx context.Context, session types.ID, contact *booking.ContactInfo) (Outcome, error) {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return Outcome{}, err
	}
	if snap.Payment == nil {
		return Outcome{Stage: Current(snap)}, ErrNothingToRetry
	}
	captured := *snap.Payment
	base := Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: captured.ConfirmationID}
	if snap.Itinerary == nil || snap.Vehicle == nil {
		log.Printf("[RECONCILE] action=retry_without_booking session=%s payment_confirmation=%s", session, captured.ConfirmationID)
		return base, fmt.Errorf("%w: staged booking is missing", ErrNothingToRetry)
	}

	var c booking.ContactInfo
	switch {
	case contact != nil:
		c = booking.NormalizeContact(*contact)
	case snap.Contact != nil:
		c = *snap.Contact
	}
	if err := booking.ValidateContact(c); err != nil {
		return base, err
	}
	if contact != nil {
		if err := s.store.SetContact(ctx, session, c); err != nil {
			return base, err
		}
	}
	return s.submit(ctx, session, *snap.Itinerary, *snap.Vehicle, c, captured, true)
}

func (s *Service) submit(ctx context.Context, session types.ID, it booking.Itinerary, sel booking.VehicleSelection, c booking.ContactInfo, captured staging.CapturedPayment, retry bool) (Outcome, error) {
	out := Outcome{Stage: StageContact, PaymentCaptured: true, PaymentConfirmationID: captured.ConfirmationID}

	payload, err := order.Assemble(it, sel, c, captured.ConfirmationID, s.cfg.Location)
	var res order.Result
	if err == nil {
		res, err = s.orders.Submit(ctx, order.Submission{
			Payload:          payload,
			ConfirmationID:   captured.ConfirmationID,
			BookingReference: captured.BookingReference,
			Retry:            retry,
		})
	}
	if err != nil {
		captured.LastError = err.Error()
		if serr := s.store.SetPayment(ctx, session, captured); serr != nil {
			log.Printf("[RECONCILE] action=capture_not_staged session=%s payment_confirmation=%s msg=%v", session, captured.ConfirmationID, serr)
		}
		return out, &OrderNotRecordedError{
			ConfirmationID:   captured.ConfirmationID,
			BookingReference: captured.BookingReference,
			Retryable:        order.IsRetryable(err),
			Err:              err,
		}
	}

	reference := res.BookingReference
	if reference == "" {
		reference = captured.BookingReference
	}
	if err := s.store.SetConfirmation(ctx, session, staging.Confirmation{
		BookingReference:      reference,
		PaymentConfirmationID: captured.ConfirmationID,
		CompletedAt:           s.now().UTC(),
	}); err != nil {
		log.Printf("[WIZARD] action=confirmation_not_stored session=%s booking_reference=%s msg=%v", session, reference, err)
	}
	if err := s.store.ClearAll(ctx, session); err != nil {
		log.Printf("[WIZARD] action=clear_failed session=%s msg=%v", session, err)
	}
	log.Printf("[WIZARD] action=completed session=%s booking_reference=%s payment_confirmation=%s", session, reference, captured.ConfirmationID)

	out.Stage = StageCompleted
	out.BookingReference = reference
	return out, nil
}

// Reset abandons the booking. A captured payment that was never recorded is
// logged so it can still be reconciled.
func (s *Service) Reset(ctx context.Context, session types.ID) error {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return err
	}
	if p := snap.Payment; p != nil {
		log.Printf("[RECONCILE] action=abandoned session=%s payment_confirmation=%s booking_reference=%s last_error=%q", session, p.ConfirmationID, p.BookingReference, p.LastError)
	}
	s.invalidateLookups(session)
	return s.store.Reset(ctx, session)
}

// bookingReference returns the selection's reference, issuing and staging
// one for selections stored without it.
func (s *Service) bookingReference(ctx context.Context, session types.ID, sel *booking.VehicleSelection) (string, error) {
	if sel.BookingReference != "" {
		return sel.BookingReference, nil
	}
	sel.BookingReference = NewBookingReference()
	if err := s.store.SetVehicle(ctx, session, *sel); err != nil {
		return "", err
	}
	return sel.BookingReference, nil
}

func (s *Service) contactStage(ctx context.Context, session types.ID) (staging.Snapshot, error) {
	snap, err := s.store.Load(ctx, session)
	if err != nil {
		return staging.Snapshot{}, err
	}
	if !CanEnter(StageContact, snap) {
		return staging.Snapshot{}, &RedirectError{From: StageContact, To: Resolve(StageContact, snap)}
	}
	return snap, nil
}

func (s *Service) invalidateLookups(session types.ID) {
	if s.lookups != nil {
		s.lookups.Invalidate(session)
	}
}

// IsRedirect reports whether err asks the caller to move to another stage.
func IsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
