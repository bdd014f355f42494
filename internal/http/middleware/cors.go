// README: CORS for the booking front-end.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the listed origins call the API with the session cookie.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin", RequestIDHeader, SessionHeader},
		ExposeHeaders:    []string{RequestIDHeader, SessionHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
