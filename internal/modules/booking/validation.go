// README: Stage gates for the itinerary and contact records.
package booking

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"chauffeur/internal/types"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 \-]+$`)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// validate is shared by both gates; field names come from json tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// itineraryFields is the trimmed, flattened view of an Itinerary the Stage 1
// gate checks.
type itineraryFields struct {
	Pickup       string `json:"pickup" validate:"required"`
	Dropoff      string `json:"dropoff" validate:"required"`
	PickupDate   string `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime   string `json:"pickup_time" validate:"required,datetime=15:04"`
	Passengers   int    `json:"passengers" validate:"min=1,max=7"`
	TravelType   string `json:"travel_type" validate:"omitempty,oneof=none flight train"`
	FlightNumber string `json:"flight_number" validate:"required_if=TravelType flight"`
	TrainNumber  string `json:"train_number" validate:"required_if=TravelType train"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that blocks a stage gate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// check runs the struct rules and turns validator errors into field errors.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		parts := strings.Fields(fe.Param())
		return "is required for " + parts[len(parts)-1] + "s"
	case "datetime":
		if fe.Param() == DateLayout {
			return "must be YYYY-MM-DD"
		}
		return "must be HH:mm"
	case "min", "max":
		return fmt.Sprintf("must be between %d and %d", MinPassengers, MaxPassengers)
	case "oneof":
		return "must be none, flight or train"
	case "email":
		return "must look like name@domain.tld"
	case "phone":
		return fmt.Sprintf("must contain %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	return "is invalid"
}

// NormalizeItinerary trims text fields, drops blank extra stops, defaults the
// travel type, and clears flight/train numbers that do not apply.
func NormalizeItinerary(it Itinerary) Itinerary {
	it.Pickup.Text = strings.TrimSpace(it.Pickup.Text)
	it.Dropoff.Text = strings.TrimSpace(it.Dropoff.Text)

	stops := make([]types.Location, 0, len(it.ExtraStops))
	for _, s := range it.ExtraStops {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		stops = append(stops, s)
	}
	it.ExtraStops = stops
	if len(it.ExtraStops) == 0 {
		it.ExtraStops = nil
	}

	it.PickupDate = strings.TrimSpace(it.PickupDate)
	it.PickupTime = strings.TrimSpace(it.PickupTime)
	if it.TravelType == "" {
		it.TravelType = TravelNone
	}
	it.FlightNumber = strings.TrimSpace(it.FlightNumber)
	it.TrainNumber = strings.TrimSpace(it.TrainNumber)
	if it.TravelType != TravelFlight {
		it.FlightNumber = ""
	}
	if it.TravelType != TravelTrain {
		it.TrainNumber = ""
	}
	it.Terminal = strings.TrimSpace(it.Terminal)
	it.Notes = strings.TrimSpace(it.Notes)
	it.ServiceType = strings.TrimSpace(it.ServiceType)
	return it
}

// ValidateItinerary is the Stage 1 gate. It returns a *ValidationError or nil.
func ValidateItinerary(it Itinerary) error {
	return check(itineraryFields{
		Pickup:       strings.TrimSpace(it.Pickup.Text),
		Dropoff:      strings.TrimSpace(it.Dropoff.Text),
		PickupDate:   strings.TrimSpace(it.PickupDate),
		PickupTime:   strings.TrimSpace(it.PickupTime),
		Passengers:   it.Passengers,
		TravelType:   string(it.TravelType),
		FlightNumber: strings.TrimSpace(it.FlightNumber),
		TrainNumber:  strings.TrimSpace(it.TrainNumber),
	})
}

func NormalizeContact(c ContactInfo) ContactInfo {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.SpecialRequests = strings.TrimSpace(c.SpecialRequests)
	return c
}

// ValidateContact is the Stage 3 payment gate.
func ValidateContact(c ContactInfo) error {
	return check(NormalizeContact(c))
}

func validPhone(p string) bool {
	if !phonePattern.MatchString(p) {
		return false
	}
	digits := 0
	for _, r := range p {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}
