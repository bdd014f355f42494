// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/handlers"
	"chauffeur/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.CORS(deps.AllowedOrigins),
		middleware.Session(deps.SessionTTL, deps.SecureCookies),
		middleware.Logging(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	api.GET("/vehicles", catalogHandler.Vehicles)
	api.GET("/service-types", catalogHandler.ServiceTypes)

	geocodeHandler := handlers.NewGeocodeHandler(deps.Geocode)
	api.GET("/geocode", geocodeHandler.Suggest)

	bookingHandler := handlers.NewBookingHandler(deps.Wizard)
	b := api.Group("/booking")
	b.GET("", bookingHandler.State)
	b.DELETE("", bookingHandler.Reset)
	b.GET("/stages/:stage", bookingHandler.EnterStage)
	b.PUT("/itinerary", bookingHandler.SubmitItinerary)
	b.POST("/vehicle", bookingHandler.SelectVehicle)
	b.POST("/contact/validate", bookingHandler.ValidateContact)
	b.POST("/payment-request", bookingHandler.PaymentRequest)
	b.POST("/payment-result", bookingHandler.PaymentResult)
	b.POST("/retry-order", bookingHandler.RetryOrder)

	return r
}
