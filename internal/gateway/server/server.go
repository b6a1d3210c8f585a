package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const readHeaderTimeout = 10 * time.Second

// Server speaks HTTP/1.1 and cleartext HTTP/2 on one port, so connect clients
// and websocket upgrades share the listener. Every request gets a server span.
type Server struct {
	httpServer *http.Server
	ln         net.Listener
}

func New(addr string, routes http.Handler) *Server {
	traced := otelhttp.NewHandler(routes, "symposium.gateway")
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           h2c.NewHandler(traced, &http2.Server{}),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Listen binds the address without serving yet. Start calls it when needed.
func (s *Server) Listen() error {
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr is the bound address once Listen succeeded, otherwise the configured one.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.httpServer.Addr
}

// Start serves until Shutdown. A graceful shutdown is not an error.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	log.Printf("symposium gateway listening on %s", s.Addr())
	err := s.httpServer.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
