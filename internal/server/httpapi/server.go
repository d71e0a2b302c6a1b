// Package httpapi is the HTTP/JSON front end: login, the bearer-protected
// identity endpoint, probes and metrics.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/sentinel/internal/logging"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/services"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 64 << 10
)

// Authenticator is the part of services.AuthService the transport needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Authorize(ctx context.Context, token string) (*models.Identity, error)
}

// ReadinessCheck reports whether a dependency (usually the credential
// store) can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Route is one registered endpoint, listed at startup.
type Route struct {
	Method string
	Path   string
}

type HTTPServer struct {
	address string
	auth    Authenticator
	logger  logging.Logger
	metrics *metrics.Metrics
	check   ReadinessCheck
	ready   atomic.Bool
	now     func() time.Time
	routes  []Route
	handler http.Handler
}

// NewHTTPServer builds the handler tree. check may be nil; m may be nil, in
// which case /metrics is not registered.
func NewHTTPServer(a string, l logging.Logger, auth Authenticator, m *metrics.Metrics, check ReadinessCheck) *HTTPServer {
	s := &HTTPServer{
		address: a,
		auth:    auth,
		logger:  l.With("module", "http_server"),
		metrics: m,
		check:   check,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	s.handle(mux, http.MethodGet, "/", s.handleRoot)
	s.handle(mux, http.MethodGet, "/health", s.handleHealth)
	s.handle(mux, http.MethodGet, "/ready", s.handleReady)
	s.handle(mux, http.MethodPost, "/api/auth/login", s.handleLogin)
	s.handle(mux, http.MethodGet, "/api/auth/me", s.requireBearer(s.handleMe))
	s.handle(mux, http.MethodGet, "/api/test", s.handleTest)
	if m != nil {
		s.handle(mux, http.MethodGet, "/metrics", m.Handler().ServeHTTP)
	}

	s.handler = s.withRequestLogging(s.withRecovery(withCORS(mux)))
	return s
}

func (s *HTTPServer) handle(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	pattern := path
	if path == "/" {
		pattern = "/{$}"
	}
	mux.HandleFunc(method+" "+pattern, h)
	s.routes = append(s.routes, Route{Method: method, Path: path})
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Routes lists the registered endpoints in registration order.
func (s *HTTPServer) Routes() []Route {
	return append([]Route(nil), s.routes...)
}

// SetReady controls what /ready reports.
func (s *HTTPServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests shutdownTimeout to finish.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping HTTP server...")
			s.SetReady(false)
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			shutdownErr <- srv.Shutdown(sctx)
		case <-done:
			shutdownErr <- nil
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	close(done)
	if sErr := <-shutdownErr; err == nil {
		err = sErr
	}
	return err
}
