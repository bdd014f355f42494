// README: Anonymous booking session; the id keys every staged slot.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chauffeur/internal/types"
)

const (
	SessionCookie = "chauffeur_session"
	SessionHeader = "X-Booking-Session"
	sessionKey    = "booking_session"
)

// Session reads the session id from the cookie or the X-Booking-Session
// header and issues a new one when neither holds a valid UUID. The cookie is
// refreshed on every request so it expires with the staged slots.
func Session(ttl time.Duration, secure bool) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id, _ = c.Cookie(SessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(sessionKey, types.ID(id))
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, maxAge, "/", "", secure, true)
		c.Writer.Header().Set(SessionHeader, id)
		c.Next()
	}
}

// CallerSession returns the session id set by Session, or "".
func CallerSession(c *gin.Context) types.ID {
	if v, ok := c.Get(sessionKey); ok {
		if id, ok := v.(types.ID); ok {
			return id
		}
	}
	return ""
}
