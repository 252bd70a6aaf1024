package adminapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"duskward/pkg/behaviortree"
	"duskward/pkg/coordinator"
	"duskward/pkg/flavor"
)

// Server is the admin HTTP surface of spec.md §6, bound to a single
// 127.0.0.1 listener (spec.md §6 "Admin HTTP (single thread, bound to
// 127.0.0.1:8001)"). It holds no simulation state of its own — every
// route reaches into the coordinator's Game or a target Instance through
// the Arbitrary/Command channels those packages already expose.
type Server struct {
	game       *coordinator.Game
	addr       string
	adminToken string
	tickPeriod time.Duration

	registry    *prometheus.Registry
	rateLimiter *rateLimiter

	behaviorTrees *behaviortree.Registry

	mux    *http.ServeMux
	server *http.Server
	logger *logrus.Entry
}

// Options configures a Server at construction time.
type Options struct {
	Addr                       string
	AdminToken                 string
	TickPeriod                 time.Duration
	Registry                   *prometheus.Registry
	RateLimitEnabled           bool
	RateLimitRequestsPerSecond float64
	RateLimitBurst             int
}

// New builds a Server wired to game. It does not start listening —
// call Run.
func New(game *coordinator.Game, opts Options) *Server {
	s := &Server{
		game:          game,
		addr:          opts.Addr,
		adminToken:    opts.AdminToken,
		tickPeriod:    opts.TickPeriod,
		registry:      opts.Registry,
		behaviorTrees: behaviortree.NewRegistry(flavor.NewBook()),
		logger:        logrus.WithField("component", "adminapi.Server"),
	}
	if opts.RateLimitEnabled {
		s.rateLimiter = newRateLimiter(opts.RateLimitRequestsPerSecond, opts.RateLimitBurst)
	}

	s.mux = http.NewServeMux()
	s.routes()
	handler := chain(s.mux, requestIDMiddleware, loggingMiddleware, recoveryMiddleware, rateLimitingMiddleware(s.rateLimiter))
	s.server = &http.Server{Addr: s.addr, Handler: handler}
	return s
}

// routes registers every admin endpoint (spec.md §6 plus SPEC_FULL.md §6's
// NEW health/metrics/stream additions).
func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.healthHandler)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	authed := accessTokenMiddleware(s.adminToken)

	s.mux.Handle("GET /api/v1/maps", authed(http.HandlerFunc(s.mapsHandler)))
	s.mux.Handle("GET /api/v1/maps/{id}/instances", authed(http.HandlerFunc(s.instancesForMapHandler)))
	s.mux.Handle("GET /api/v1/instances/{id}/entities", authed(http.HandlerFunc(s.entitiesHandler)))
	s.mux.Handle("GET /api/v1/players", authed(http.HandlerFunc(s.playersHandler)))
	s.mux.Handle("POST /api/v1/instances/{id}/spawn", authed(http.HandlerFunc(s.spawnHandler)))
	s.mux.Handle("DELETE /api/v1/instances/{instance_id}/entities/{entity_id}", authed(http.HandlerFunc(s.deleteEntityHandler)))
	s.mux.Handle("POST /api/v1/connect_character", authed(http.HandlerFunc(s.connectCharacterHandler)))
	s.mux.Handle("POST /api/v1/shutdown", authed(http.HandlerFunc(s.shutdownHandler)))

	// The stream route is authenticated via the same Access-Token header;
	// browsers can't set custom headers on a websocket handshake, but the
	// admin dashboard this is built for is a non-browser client that can.
	s.mux.Handle("GET /api/v1/instances/{id}/stream", authed(http.HandlerFunc(s.streamHandler)))
}

// Run starts the admin HTTP listener and blocks until ctx is cancelled,
// then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.addr).Info("admin HTTP listener starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.rateLimiter != nil {
			s.rateLimiter.Close()
		}
		return s.server.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}
