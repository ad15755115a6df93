package api

import (
	"net/http"
	"strings"
	"time"
)

const timeoutBody = `{"success": false, "message": "request timeout", "error": "the request took too long to process"}`

// TimeoutMiddleware bounds every request by timeout. The request context carries the
// deadline so database calls give up too; a handler still running when it expires
// gets its output discarded and the client receives a 503.
//
// The 503 body is the usual JSON error envelope. http.TimeoutHandler writes it straight
// to w, so the content type is set on w up front; a handler that finishes in time
// replaces it with its own.
//
// Websocket upgrades are passed through untouched since they need the raw connection.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			bounded.ServeHTTP(w, r)
		})
	}
}
