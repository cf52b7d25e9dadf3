// internal/server/timeouts.go
//
// HTTP server constructor with fixed timeouts.
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – the endpoint takes no bodies (10 s)
//   • WriteTimeout      – cap total response time (15 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/appconf/internal/config"
)

// New constructs an *http.Server serving Router(g) on addr.
func New(addr string, g config.GlobalConfig, log *zap.SugaredLogger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Router(g, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
