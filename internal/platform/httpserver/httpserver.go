// Package httpserver owns the process listener. Route assembly lives in
// internal/transport/http; only connection-level defaults are set here.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with timeouts sized for the wizard's small JSON
// bodies. Nothing the API serves should hold a connection for long.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
