// Package server serves a live list and the operation record pool metrics via HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// List is a list that changes over time.
type List interface {
	Items() []string
	Generation() uint64
}

// Server serves a single list via HTTP:
//
//	GET /           items, one per line
//	GET /feed.atom  recent reconciliations
//	GET /metrics    metrics gathered from the registry
type Server struct {
	http    *http.Server
	handler *handler
	errc    chan error
	addr    net.Addr
}

// Run creates a new server and runs it in a new goroutine.
func Run(addr string, list List, feed *Feed, reg *prometheus.Registry) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting HTTP server: %v", err)
	}

	h := newHandler(list)
	mux := http.NewServeMux()
	mux.Handle("/", h)
	mux.Handle("/feed.atom", &feedHandler{feed: feed})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s := &Server{
		http: &http.Server{
			Handler: mux,
		},
		handler: h,
		errc:    make(chan error, 1),
		addr:    l.Addr(),
	}

	go func() {
		if err := s.http.Serve(l); err != nil && err != http.ErrServerClosed {
			s.errc <- err
		}
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr { return s.addr }

// Replace replaces the list to serve with the one provided.
func (s *Server) Replace(list List) {
	s.handler.list.Store(&list)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %v", err)
	}
	return nil
}

// Error returns a channel to listen to errors while serving.
func (s *Server) Error() <-chan error {
	return s.errc
}
