// Package http exposes the dashboard engine over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"donordash/internal/cache"
	"donordash/internal/log"
	"donordash/internal/middleware/trace"
	"donordash/internal/services"
)

type Server struct {
	http.Server
	dashboard   *services.DashboardService
	rateLimiter *rateLimiter
	tracer      *trace.Middleware

	// Cached JSON payloads keyed by recompute generation plus window
	// bounds. Every published recompute bumps the generation, so stale
	// entries stop matching and TTL out.
	generation      atomic.Uint64
	donorsCache     *cache.LRUCache[[]byte]
	breakdownsCache *cache.LRUCache[[]byte]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, dashboard *services.DashboardService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		dashboard:       dashboard,
		rateLimiter:     newRateLimiter(),
		tracer:          trace.NewMiddleware(clientIP),
		donorsCache:     cache.NewLRUCache[[]byte](200, 5*time.Minute),
		breakdownsCache: cache.NewLRUCache[[]byte](100, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.donorsCache)
	s.cacheManager.Register(s.breakdownsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /api/metrics", s.withGuards(s.handleMetrics))
	mux.HandleFunc("GET /api/donors", s.withGuards(s.handleDonors))
	mux.HandleFunc("GET /api/donors/{email}", s.withGuards(s.handleDonorDetail))
	mux.HandleFunc("GET /api/breakdowns", s.withGuards(s.handleBreakdowns))
	mux.HandleFunc("POST /api/filter", s.withGuards(s.handleApplyFilter))
	mux.HandleFunc("POST /api/filter/reset", s.withGuards(s.handleResetFilter))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	logged := log.Middleware(log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP))

	s.Server = http.Server{
		Addr:    addr,
		Handler: logged(s.tracer.Middleware(mux)),
	}

	return s
}

// withGuards applies rate limiting to mutating requests and sets the
// response headers shared by all API endpoints.
func (s *Server) withGuards(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next(w, r)
	}
}

// clientIP extracts the caller address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
