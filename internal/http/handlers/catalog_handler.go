// README: Read-only catalog handlers (vehicles, service types).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) Vehicles(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"vehicles": h.catalog.ListVehicles()})
}

func (h *CatalogHandler) ServiceTypes(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"service_types": booking.ServiceTypes()})
}
