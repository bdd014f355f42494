// README: API gateway; holds service dependencies and builds the HTTP server.
package http

import (
	"net/http"
	"time"

	"chauffeur/internal/modules/catalog"
	"chauffeur/internal/modules/geocode"
	"chauffeur/internal/modules/wizard"
)

type ServerDeps struct {
	Catalog *catalog.Service
	Geocode *geocode.Service
	Wizard  *wizard.Service

	AllowedOrigins []string
	SessionTTL     time.Duration
	SecureCookies  bool
}

// NewServer returns an http.Server for addr. Write timeout leaves room for
// the order submission timeout on payment-result requests.
func NewServer(addr string, deps ServerDeps) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
