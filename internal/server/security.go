// internal/server/security.go
//
// Security-header middleware.
//
// The inspection endpoint exposes addresses and database names, so every
// response is locked down:
//
//   • Content-Security-Policy   –  nothing may load, nothing may frame us
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  no Referer at all
//   • Cache-Control             –  never store configuration in caches
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP, since anything added after the
//   handler writes its body is dropped; handlers may still override them.
// • Oxford commas, two spaces after periods.

package server

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		csp   = "default-src 'none'; frame-ancestors 'none'"
		nosn  = "nosniff"
		refer = "no-referrer"
		cache = "no-store"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)
		h.Set("Cache-Control", cache)

		next.ServeHTTP(w, r)
	})
}
