// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/geocode"
	"chauffeur/internal/modules/payment"
	"chauffeur/internal/modules/wizard"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Error  string               `json:"error"`
	Fields []booking.FieldError `json:"fields"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// bookingErrorBody maps service errors to a status and response body.
func bookingErrorBody(c *gin.Context, err error) (int, gin.H) {
	var verr *booking.ValidationError
	var redirect *wizard.RedirectError
	var notRecorded *wizard.OrderNotRecordedError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields}
	case errors.As(err, &redirect):
		return http.StatusOK, gin.H{"stage": redirect.To, "requested": redirect.From, "redirected": true}
	case errors.As(err, &notRecorded):
		return http.StatusBadGateway, gin.H{
			"error":                   "payment succeeded but the booking could not be recorded; keep this confirmation for support",
			"payment_captured":        true,
			"payment_confirmation_id": notRecorded.ConfirmationID,
			"booking_reference":       notRecorded.BookingReference,
			"retryable":               notRecorded.Retryable,
		}
	case errors.Is(err, payment.ErrPaymentFailed):
		return http.StatusPaymentRequired, gin.H{"error": err.Error()}
	case errors.Is(err, payment.ErrInvalidResult), errors.Is(err, geocode.ErrBadRequest):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.Is(err, wizard.ErrUnknownVehicle), errors.Is(err, wizard.ErrNoVehicleFits):
		return http.StatusUnprocessableEntity, gin.H{"error": err.Error()}
	case errors.Is(err, wizard.ErrPaymentPending), errors.Is(err, wizard.ErrAlreadyPaid), errors.Is(err, wizard.ErrNothingToRetry):
		return http.StatusConflict, gin.H{"error": err.Error()}
	default:
		log.Printf("[HTTP] request_id=%s session=%s action=error msg=%v", middleware.GetRequestID(c), middleware.CallerSession(c), err)
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}

func writeBookingError(c *gin.Context, err error) {
	status, body := bookingErrorBody(c, err)
	writeJSON(c, status, body)
}
