package webhook

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/lockwatch/internal/domain/port/inbound"
	"github.com/jonny/lockwatch/pkg/health"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerMinute int

	// Signature checks are skipped when these are empty.
	DiscordPublicKey   ed25519.PublicKey
	SlackSigningSecret string
}

// Server wraps an HTTP server with graceful shutdown support.
type Server struct {
	cfg     ServerConfig
	discord *DiscordHandler
	slack   *SlackHandler
	health  *health.Checker
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates a Server that routes both chat platforms' callbacks to
// interactions.
func NewServer(cfg ServerConfig, interactions inbound.InteractionPort, checker *health.Checker, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		discord: NewDiscordHandler(interactions, logger),
		slack:   NewSlackHandler(interactions, nil, logger),
		health:  checker,
		logger:  logger,
	}
}

// SetupRoutes builds and returns an http.Handler with all middleware applied.
// Route layout:
//
//	GET  /healthz               - Liveness
//	GET  /readyz                - Readiness
//	POST /interactions/discord  - Discord interactions endpoint
//	POST /interactions/slack    - Slack interactivity request URL
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Only the probes are rate limited. Chat platforms call the interaction
	// routes from shared egress IPs and expect a 200 on every reply.
	limit := middleware.NewRateLimiter(s.cfg.RateLimitPerMinute)
	mux.Handle("GET /healthz", limit(s.health.LivenessHandler()))
	mux.Handle("GET /readyz", limit(s.health.ReadinessHandler()))

	var discord http.Handler = s.discord
	if len(s.cfg.DiscordPublicKey) > 0 {
		discord = middleware.DiscordSignature(s.cfg.DiscordPublicKey, s.logger)(discord)
	}
	mux.Handle("POST /interactions/discord", discord)

	var slack http.Handler = s.slack
	if s.cfg.SlackSigningSecret != "" {
		slack = middleware.SlackSignature(s.cfg.SlackSigningSecret, s.logger)(slack)
	}
	mux.Handle("POST /interactions/slack", slack)

	// Apply middleware stack (outermost = first to execute):
	//   SecurityHeaders -> BodyReader -> Logging
	var h http.Handler = mux
	h = middleware.NewLoggingMiddleware(s.logger)(h)
	h = middleware.BodyReader(h)
	h = middleware.SecurityHeaders(h)

	return h
}

// Start starts the HTTP server and blocks until ctx is cancelled, then performs
// a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.SetupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("interaction server listening",
			"port", s.cfg.Port,
			"discordSignature", len(s.cfg.DiscordPublicKey) > 0,
			"slackSignature", s.cfg.SlackSigningSecret != "",
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "interaction server shutdown")
		}
		s.slack.Wait()
		s.logger.Info("interaction server stopped")
		return nil
	case err := <-errCh:
		return errors.Wrap(err, "interaction server")
	}
}
