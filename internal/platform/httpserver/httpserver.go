// Package httpserver builds the http.Server used by cmd/server. Timeouts
// come from configuration so a deployment fronting slow ledger nodes can
// widen them without a rebuild.
package httpserver

import (
	"net/http"
	"time"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
)

// Options override the server's timeout defaults. Zero values keep the
// defaults.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New builds an HTTP server for the given address and handler.
func New(addr string, handler http.Handler, opts Options) *http.Server {
	readTimeout := opts.ReadTimeout
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
