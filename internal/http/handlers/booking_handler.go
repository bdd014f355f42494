// README: Booking handlers; one per stage action of the caller's session.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/payment"
	"chauffeur/internal/modules/wizard"
)

type BookingHandler struct {
	wizard *wizard.Service
}

func NewBookingHandler(svc *wizard.Service) *BookingHandler {
	return &BookingHandler{wizard: svc}
}

type selectVehicleReq struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
}

type paymentResultReq struct {
	Contact booking.ContactInfo `json:"contact"`
	Result  payment.Result      `json:"result"`
}

type retryOrderReq struct {
	Contact *booking.ContactInfo `json:"contact"`
}

func (h *BookingHandler) State(c *gin.Context) {
	view, err := h.wizard.State(c.Request.Context(), middleware.CallerSession(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

func (h *BookingHandler) EnterStage(c *gin.Context) {
	stage, ok := wizard.ParseStage(c.Param("stage"))
	if !ok {
		writeError(c, http.StatusNotFound, "unknown stage")
		return
	}
	view, err := h.wizard.Enter(c.Request.Context(), middleware.CallerSession(c), stage)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

func (h *BookingHandler) SubmitItinerary(c *gin.Context) {
	var req booking.ItineraryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	next, err := h.wizard.SubmitItinerary(c.Request.Context(), middleware.CallerSession(c), req.Itinerary())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"stage": next})
}

func (h *BookingHandler) SelectVehicle(c *gin.Context) {
	var req selectVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "vehicle_id is required")
		return
	}
	sel, err := h.wizard.SelectVehicle(c.Request.Context(), middleware.CallerSession(c), req.VehicleID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"stage": wizard.StageContact, "selection": sel})
}

func (h *BookingHandler) ValidateContact(c *gin.Context) {
	var req booking.ContactInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	contact, err := h.wizard.ValidateContact(c.Request.Context(), middleware.CallerSession(c), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"valid": true, "contact": contact})
}

func (h *BookingHandler) PaymentRequest(c *gin.Context) {
	var req booking.ContactInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	pr, err := h.wizard.PaymentRequest(c.Request.Context(), middleware.CallerSession(c), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, pr)
}

func (h *BookingHandler) PaymentResult(c *gin.Context) {
	var req paymentResultReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.wizard.HandlePaymentResult(c.Request.Context(), middleware.CallerSession(c), req.Contact, req.Result)
	if err != nil {
		writeOutcomeError(c, out, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *BookingHandler) RetryOrder(c *gin.Context) {
	var req retryOrderReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	out, err := h.wizard.RetryOrder(c.Request.Context(), middleware.CallerSession(c), req.Contact)
	if err != nil {
		writeOutcomeError(c, out, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *BookingHandler) Reset(c *gin.Context) {
	if err := h.wizard.Reset(c.Request.Context(), middleware.CallerSession(c)); err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"stage": wizard.StageItinerary})
}

// writeOutcomeError keeps the captured payment visible on every error that
// follows a successful charge.
func writeOutcomeError(c *gin.Context, out wizard.Outcome, err error) {
	status, body := bookingErrorBody(c, err)
	if out.PaymentCaptured {
		body["payment_captured"] = true
		body["payment_confirmation_id"] = out.PaymentConfirmationID
	}
	writeJSON(c, status, body)
}
