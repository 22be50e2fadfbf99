// Package api provides the usjconv HTTP conversion service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/usjconv/core/convert"
	"github.com/FocuswithJustin/usjconv/internal/cache"
	"github.com/FocuswithJustin/usjconv/internal/config"
	"github.com/FocuswithJustin/usjconv/internal/logging"
)

// Version is reported by /health and the root endpoint.
var Version = "dev"

// Server serves conversions over HTTP.
type Server struct {
	cfg      config.ServerConfig
	defaults config.ConvertConfig
	started  time.Time
	handler  http.Handler
	results  *cache.TTLCache[string, *convert.Result] // nil when disabled
}

// New builds a server from the service and conversion settings.
func New(cfg config.ServerConfig, defaults config.ConvertConfig) *Server {
	s := &Server{cfg: cfg, defaults: defaults, started: time.Now()}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		s.results = cache.New[string, *convert.Result](cfg.CacheTTL, cfg.CacheSize)
	}

	var handler http.Handler = securityHeaders(s.routes())
	if cfg.RateLimit > 0 {
		rl := newRateLimiter(cfg.RateLimit, cfg.RateBurst)
		handler = rl.middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", cfg.RateLimit,
			"burst_size", rl.burstSize())
	}
	handler = cors(cfg.AllowedOrigins, handler)
	s.handler = logging.CombinedMiddleware(handler)
	return s
}

// Handler returns the complete middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/formats", s.handleFormats)
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	return mux
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	logging.ServerStartup("rest_api", ln.Addr().String(),
		"max_body_bytes", s.cfg.MaxBodyBytes,
		"version", Version)

	if s.results != nil {
		go s.sweepCache(ctx, s.cfg.CacheTTL)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down", "timeout", s.cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepCache drops expired conversion results every interval until ctx is
// done, so idle entries do not wait for the cache to fill.
func (s *Server) sweepCache(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.results.Purge(); n > 0 {
				logging.Debug("expired conversions purged", "entries", n)
			}
		}
	}
}
