package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chauffeur/internal/config"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/catalog"
	"chauffeur/internal/modules/order"
	"chauffeur/internal/modules/payment"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/modules/staging"
	"chauffeur/internal/types"
)

type scriptedOrders struct {
	mu    sync.Mutex
	subs  []order.Submission
	steps []error
	ref   string
}

func (s *scriptedOrders) Submit(_ context.Context, sub order.Submission) (order.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	if len(s.steps) > 0 {
		err := s.steps[0]
		s.steps = s.steps[1:]
		if err != nil {
			return order.Result{}, err
		}
	}
	return order.Result{BookingReference: s.ref}, nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[types.ID]int
}

func (c *countingInvalidator) Invalidate(session types.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[types.ID]int{}
	}
	c.calls[session]++
}

func (c *countingInvalidator) count(session types.ID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[session]
}

type harness struct {
	svc     *Service
	store   *staging.Store
	orders  *scriptedOrders
	lookups *countingInvalidator
	session types.ID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := staging.NewStore(staging.NewMemoryKV())
	orders := &scriptedOrders{ref: "CH-2025-0042"}
	lookups := &countingInvalidator{}
	cfg := config.BookingConfig{Currency: "EUR", Location: time.FixedZone("CEST", 2*60*60)}
	svc := NewService(store, pricing.NewService(catalog.NewService(nil)), orders, lookups, cfg)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return &harness{svc: svc, store: store, orders: orders, lookups: lookups, session: types.ID(uuid.NewString())}
}

func parisToCDG() booking.Itinerary {
	return booking.Itinerary{
		Pickup:     types.NewLocation("A", 48.8566, 2.3522),
		Dropoff:    types.NewLocation("B", 49.0097, 2.5479),
		PickupDate: "2025-06-01",
		PickupTime: "10:00",
		Passengers: 2,
		TravelType: booking.TravelNone,
	}
}

func jean() booking.ContactInfo {
	return booking.ContactInfo{FirstName: "Jean", LastName: "Dupont", Email: "jean@example.com", Phone: "+33612345678"}
}

// staged drives a session to Stage 3 with the sedan selected.
func (h *harness) staged(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	next, err := h.svc.SubmitItinerary(ctx, h.session, parisToCDG())
	require.NoError(t, err)
	require.Equal(t, StageVehicle, next)
	_, err = h.svc.SelectVehicle(ctx, h.session, "sedan")
	require.NoError(t, err)
}

func TestSubmitItinerary_Gate(t *testing.T) {
	h := newHarness(t)
	it := parisToCDG()
	it.TravelType = booking.TravelFlight
	it.FlightNumber = "  "

	next, err := h.svc.SubmitItinerary(context.Background(), h.session, it)

	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StageItinerary, next)
	assert.Equal(t, "flight_number", verr.Fields[0].Field)

	snap, err := h.store.Load(context.Background(), h.session)
	require.NoError(t, err)
	assert.Nil(t, snap.Itinerary, "rejected itinerary must not be stored")
}

func TestSubmitItinerary_TrimsStopsAndInvalidatesDownstream(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.staged(t)

	it := parisToCDG()
	it.Passengers = 4
	it.ExtraStops = []types.Location{{Text: " "}, {Text: "Gare du Nord"}, {Text: ""}}
	_, err := h.svc.SubmitItinerary(ctx, h.session, it)
	require.NoError(t, err)

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	require.NotNil(t, snap.Itinerary)
	assert.Equal(t, []types.Location{{Text: "Gare du Nord"}}, snap.Itinerary.ExtraStops)
	assert.Nil(t, snap.Vehicle)
	assert.Nil(t, snap.Contact)
	assert.Positive(t, h.lookups.count(h.session))
}

func TestVehicleOptions_ParisToCDG(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.SubmitItinerary(ctx, h.session, parisToCDG())
	require.NoError(t, err)

	opts, err := h.svc.VehicleOptions(ctx, h.session)
	require.NoError(t, err)
	assert.InDelta(t, 22.23, opts.DistanceKm, 0.01)
	assert.Equal(t, 33, opts.DurationMin)
	require.Len(t, opts.Quotes, 3)
	assert.Equal(t, "sedan", opts.Quotes[0].Vehicle.ID)
	assert.InDelta(t, 40+opts.DistanceKm*2.4, opts.Quotes[0].Price, 1e-9)
	assert.False(t, opts.DeadEnd)
	assert.Nil(t, opts.Selected)
}

func TestVehicleOptions_SevenPassengersOnlyVan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	it := parisToCDG()
	it.Passengers = 7
	_, err := h.svc.SubmitItinerary(ctx, h.session, it)
	require.NoError(t, err)

	opts, err := h.svc.VehicleOptions(ctx, h.session)
	require.NoError(t, err)
	require.Len(t, opts.Quotes, 1)
	assert.Equal(t, "van", opts.Quotes[0].Vehicle.ID)

	_, err = h.svc.SelectVehicle(ctx, h.session, "sedan")
	assert.ErrorIs(t, err, ErrUnknownVehicle)
}

func TestVehicleOptions_DeadEnd(t *testing.T) {
	store := staging.NewStore(staging.NewMemoryKV())
	small := staticCatalog{{ID: "coupe", Name: "Coupe", Capacity: 1, Base: 30, PerKm: 2}}
	svc := NewService(store, pricing.NewService(small), &scriptedOrders{}, nil, config.BookingConfig{})
	ctx := context.Background()
	session := types.ID(uuid.NewString())

	_, err := svc.SubmitItinerary(ctx, session, parisToCDG())
	require.NoError(t, err)

	opts, err := svc.VehicleOptions(ctx, session)
	require.NoError(t, err)
	assert.True(t, opts.DeadEnd)
	assert.Empty(t, opts.Quotes)

	_, err = svc.SelectVehicle(ctx, session, "coupe")
	assert.ErrorIs(t, err, ErrNoVehicleFits)
}

type staticCatalog []catalog.Vehicle

func (c staticCatalog) ListVehicles() []catalog.Vehicle { return c }

func TestSelectVehicle_FreezesQuote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.staged(t)

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	require.NotNil(t, snap.Vehicle)
	assert.Equal(t, "Business Sedan", snap.Vehicle.VehicleName)
	assert.InDelta(t, 93.35, snap.Vehicle.Price, 0.01)
	assert.Equal(t, 33, snap.Vehicle.DurationMin)
	assert.True(t, strings.HasPrefix(snap.Vehicle.BookingReference, "BK-"))

	// Going back to Stage 2 shows the existing selection.
	view, err := h.svc.Enter(ctx, h.session, StageVehicle)
	require.NoError(t, err)
	assert.Equal(t, StageVehicle, view.Stage)
	require.NotNil(t, view.Vehicles)
	require.NotNil(t, view.Vehicles.Selected)
	assert.Equal(t, "sedan", view.Vehicles.Selected.VehicleID)
}

func TestEnter_RedirectsToFirstIncompleteStage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	view, err := h.svc.Enter(ctx, h.session, StageContact)
	require.NoError(t, err)
	assert.Equal(t, StageItinerary, view.Stage)
	assert.True(t, view.Redirected)

	_, err = h.svc.SubmitItinerary(ctx, h.session, parisToCDG())
	require.NoError(t, err)
	view, err = h.svc.Enter(ctx, h.session, StageContact)
	require.NoError(t, err)
	assert.Equal(t, StageVehicle, view.Stage)
	assert.NotNil(t, view.Vehicles)

	_, err = h.svc.ValidateContact(ctx, h.session, jean())
	re, ok := IsRedirect(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, StageVehicle, re.To)
}

func TestEnter_InvalidatesLookups(t *testing.T) {
	h := newHarness(t)
	before := h.lookups.count(h.session)
	_, err := h.svc.Enter(context.Background(), h.session, StageItinerary)
	require.NoError(t, err)
	assert.Equal(t, before+1, h.lookups.count(h.session))
}

func TestValidateContact(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()

	c, err := h.svc.ValidateContact(ctx, h.session, jean())
	require.NoError(t, err)
	assert.Equal(t, "Jean", c.FirstName)

	bad := jean()
	bad.Email = "jean.example.com"
	bad.Phone = "12345"
	_, err = h.svc.ValidateContact(ctx, h.session, bad)
	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	assert.Nil(t, snap.Contact, "validation alone stores nothing")
}

func TestPaymentRequest(t *testing.T) {
	h := newHarness(t)
	h.staged(t)

	req, err := h.svc.PaymentRequest(context.Background(), h.session, jean())
	require.NoError(t, err)
	assert.Equal(t, int64(9335), req.Amount.Amount)
	assert.Equal(t, "EUR", req.Amount.Currency)
	assert.Equal(t, "Jean Dupont", req.Customer.Name)
	assert.Equal(t, "sedan", req.Metadata["vehicle_id"])

	snap, err := h.store.Load(context.Background(), h.session)
	require.NoError(t, err)
	assert.Equal(t, snap.Vehicle.BookingReference, req.BookingReference)

	again, err := h.svc.PaymentRequest(context.Background(), h.session, jean())
	require.NoError(t, err)
	assert.Equal(t, req.BookingReference, again.BookingReference, "one booking keeps one reference")
}

func TestPaymentRequest_IssuesReferenceForLegacySelection(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.SubmitItinerary(ctx, h.session, parisToCDG())
	require.NoError(t, err)
	require.NoError(t, h.store.SetVehicle(ctx, h.session, booking.VehicleSelection{
		VehicleID: "sedan", VehicleName: "Business Sedan", Price: 93.35, DistanceKm: 22.23, DurationMin: 33,
	}))

	req, err := h.svc.PaymentRequest(ctx, h.session, jean())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.BookingReference, "BK-"))

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	assert.Equal(t, req.BookingReference, snap.Vehicle.BookingReference)
}

func TestHandlePaymentResult_Failure(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()

	out, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Failed("card declined"))
	require.ErrorIs(t, err, payment.ErrPaymentFailed)
	assert.Contains(t, err.Error(), "card declined")
	assert.Equal(t, StageContact, out.Stage)
	assert.False(t, out.PaymentCaptured)
	assert.Empty(t, h.orders.subs)

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	assert.Nil(t, snap.Contact)
	assert.Nil(t, snap.Payment)
	assert.NotNil(t, snap.Vehicle)
}

func TestHandlePaymentResult_Success(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()

	out, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_3Nabc"))
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, out.Stage)
	assert.Equal(t, "CH-2025-0042", out.BookingReference)
	assert.Equal(t, "pi_3Nabc", out.PaymentConfirmationID)

	require.Len(t, h.orders.subs, 1)
	sub := h.orders.subs[0]
	assert.False(t, sub.Retry)
	assert.Equal(t, "pi_3Nabc", sub.ConfirmationID)
	assert.Equal(t, "2025-06-01T08:00:00Z", sub.Payload.PickupDatetime)
	assert.Equal(t, 93.35, sub.Payload.BasePrice)
	assert.True(t, strings.HasSuffix(sub.Payload.Notes, "Payment confirmation: pi_3Nabc"))

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	assert.Nil(t, snap.Itinerary)
	assert.Nil(t, snap.Vehicle)
	assert.Nil(t, snap.Contact)
	assert.Nil(t, snap.Payment)
	require.NotNil(t, snap.Confirmation)
	assert.Equal(t, "CH-2025-0042", snap.Confirmation.BookingReference)

	view, err := h.svc.State(ctx, h.session)
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, view.Stage)
}

func TestHandlePaymentResult_OrderNotRecorded(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()
	h.orders.steps = []error{errors.Join(order.ErrSubmission, order.ErrUnavailable)}

	out, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_9"))

	require.ErrorIs(t, err, ErrOrderNotRecorded)
	var nre *OrderNotRecordedError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, "pi_9", nre.ConfirmationID)
	assert.True(t, nre.Retryable)
	assert.True(t, out.PaymentCaptured)
	assert.Equal(t, StageContact, out.Stage)

	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	require.NotNil(t, snap.Payment)
	assert.Equal(t, "pi_9", snap.Payment.ConfirmationID)
	assert.NotEmpty(t, snap.Payment.LastError)
	assert.NotNil(t, snap.Contact)

	// No second charge and no new itinerary while the order is missing.
	_, err = h.svc.PaymentRequest(ctx, h.session, jean())
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	_, err = h.svc.SubmitItinerary(ctx, h.session, parisToCDG())
	assert.ErrorIs(t, err, ErrPaymentPending)
	_, err = h.svc.SelectVehicle(ctx, h.session, "van")
	assert.ErrorIs(t, err, ErrPaymentPending)

	out, err = h.svc.RetryOrder(ctx, h.session, nil)
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, out.Stage)
	require.Len(t, h.orders.subs, 2)
	assert.True(t, h.orders.subs[1].Retry)
	assert.Equal(t, h.orders.subs[0].Payload, h.orders.subs[1].Payload, "retry resubmits the same order")
}

func TestHandlePaymentResult_DuplicateEvent(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()
	h.orders.steps = []error{order.ErrSubmission}

	_, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_1"))
	require.ErrorIs(t, err, ErrOrderNotRecorded)

	_, err = h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_2"))
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Len(t, h.orders.subs, 1)

	out, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_1"))
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, out.Stage)
	assert.True(t, h.orders.subs[1].Retry)
}

func TestHandlePaymentResult_ReplayAfterCompletion(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()

	first, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_1"))
	require.NoError(t, err)
	require.Equal(t, StageCompleted, first.Stage)

	replay, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_1"))
	require.NoError(t, err)
	assert.Equal(t, first, replay)
	assert.Len(t, h.orders.subs, 1, "a replayed event must not submit again")

	// A different capture on the emptied session is still a reconciliation case.
	_, err = h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_other"))
	_, redirected := IsRedirect(err)
	assert.True(t, redirected)
}

func TestHandlePaymentResult_ReferencePerBooking(t *testing.T) {
	h := newHarness(t)
	h.orders.ref = ""
	ctx := context.Background()

	var refs []string
	for _, pi := range []string{"pi_a", "pi_b"} {
		h.staged(t)
		req, err := h.svc.PaymentRequest(ctx, h.session, jean())
		require.NoError(t, err)
		out, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded(pi))
		require.NoError(t, err)
		require.Equal(t, StageCompleted, out.Stage)
		assert.Equal(t, req.BookingReference, out.BookingReference, "without a backend reference the payment reference is kept")
		refs = append(refs, out.BookingReference)
	}

	require.Len(t, h.orders.subs, 2)
	assert.NotEqual(t, refs[0], refs[1])
	assert.Equal(t, refs[0], h.orders.subs[0].BookingReference)
	assert.Equal(t, refs[1], h.orders.subs[1].BookingReference)
}

func TestHandlePaymentResult_InvalidContactKeepsCapture(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()
	bad := jean()
	bad.Email = "nope"

	out, err := h.svc.HandlePaymentResult(ctx, h.session, bad, payment.Succeeded("pi_5"))
	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, out.PaymentCaptured)
	assert.Empty(t, h.orders.subs)

	fixed := jean()
	out, err = h.svc.RetryOrder(ctx, h.session, &fixed)
	require.NoError(t, err)
	assert.Equal(t, StageCompleted, out.Stage)
	assert.Equal(t, "jean@example.com", h.orders.subs[0].Payload.CustomerEmail)
}

func TestHandlePaymentResult_RejectsMalformedEvent(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	_, err := h.svc.HandlePaymentResult(context.Background(), h.session, jean(), payment.Result{Status: payment.StatusSucceeded})
	assert.ErrorIs(t, err, payment.ErrInvalidResult)
}

func TestRetryOrder_NothingPending(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	_, err := h.svc.RetryOrder(context.Background(), h.session, nil)
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.staged(t)
	ctx := context.Background()
	_, err := h.svc.HandlePaymentResult(ctx, h.session, jean(), payment.Succeeded("pi_1"))
	require.NoError(t, err)

	require.NoError(t, h.svc.Reset(ctx, h.session))
	snap, err := h.store.Load(ctx, h.session)
	require.NoError(t, err)
	assert.Equal(t, staging.Snapshot{}, snap)
}
