// README: Geocode handler; suggestions for one location field of the caller's session.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/geocode"
)

type GeocodeHandler struct {
	geocode *geocode.Service
}

func NewGeocodeHandler(svc *geocode.Service) *GeocodeHandler {
	return &GeocodeHandler{geocode: svc}
}

func (h *GeocodeHandler) Suggest(c *gin.Context) {
	field := c.Query("field")
	if !geocode.ValidField(field) {
		writeError(c, http.StatusBadRequest, "field must be pickup, dropoff or stop-N")
		return
	}
	res, err := h.geocode.Suggest(c.Request.Context(), middleware.CallerSession(c), field, c.Query("q"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
