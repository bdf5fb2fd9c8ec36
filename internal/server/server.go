// Package server orchestrates all components: COMMS client, REST client,
// dispatcher, and the HTTP endpoint receiving interactions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	comms "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morezero/interactions-gateway/internal/config"
	"github.com/morezero/interactions-gateway/pkg/command"
	"github.com/morezero/interactions-gateway/pkg/commsutil"
	"github.com/morezero/interactions-gateway/pkg/dispatcher"
	"github.com/morezero/interactions-gateway/pkg/events"
	"github.com/morezero/interactions-gateway/pkg/metrics"
	"github.com/morezero/interactions-gateway/pkg/reply"
	"github.com/morezero/interactions-gateway/pkg/restapi"
	"github.com/morezero/interactions-gateway/pkg/signature"
)

const logPrefix = "server:server"

// Params wires a Server. Registry, Dispatcher and Verifier are required.
type Params struct {
	Config     *config.Config
	Registry   *command.Registry
	Dispatcher *dispatcher.Dispatcher
	Verifier   *signature.Verifier
	Encoder    *reply.Encoder
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	// Comms is nil when dispatch events are disabled.
	Comms  *comms.Conn
	Logger *slog.Logger
}

// Server is the interactions gateway HTTP endpoint.
type Server struct {
	cfg        *config.Config
	registry   *command.Registry
	dispatcher *dispatcher.Dispatcher
	verifier   *signature.Verifier
	encoder    *reply.Encoder
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	nc         *comms.Conn
	logger     *slog.Logger
	started    time.Time
	ready      atomic.Bool
}

// New creates a Server from p.
func New(p Params) *Server {
	s := &Server{
		cfg:        p.Config,
		registry:   p.Registry,
		dispatcher: p.Dispatcher,
		verifier:   p.Verifier,
		encoder:    p.Encoder,
		metrics:    p.Metrics,
		gatherer:   p.Gatherer,
		nc:         p.Comms,
		logger:     p.Logger,
		started:    time.Now(),
	}
	if s.cfg == nil {
		s.cfg = &config.Config{Route: "/interactions", MaxBodyBytes: 1 << 20}
	}
	if s.encoder == nil {
		s.encoder = reply.NewEncoder(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the HTTP routes of the gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Route, s.handleInteraction())
	mux.HandleFunc("/health", s.handleHealth())
	mux.HandleFunc("/ready", s.handleReady())
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/", s.handleHome())
	return mux
}

// SetReady marks the server ready or not ready for traffic.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

type healthOutput struct {
	Status        string `json:"status"`
	Commands      int    `json:"commands"`
	Preconditions int    `json:"preconditions"`
	Comms         string `json:"comms"`
	Uptime        string `json:"uptime"`
	Timestamp     string `json:"timestamp"`
}

func (s *Server) health() *healthOutput {
	h := &healthOutput{
		Status:    "healthy",
		Comms:     "disabled",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.registry != nil {
		h.Commands, h.Preconditions = s.registry.Len()
	}
	if s.nc != nil {
		if s.nc.IsConnected() {
			h.Comms = "connected"
		} else {
			// Events are best effort; interactions are still served.
			h.Comms = "disconnected"
			h.Status = "degraded"
		}
	}
	return h
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.health())
	}
}

func (s *Server) handleReady() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	}
}

// Run builds the gateway around reg, serves until ctx is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, reg *command.Registry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(fmt.Sprintf("%s - Starting interactions gateway", logPrefix))

	verifier, err := signature.NewVerifier(cfg.PublicKey)
	if err != nil {
		return fmt.Errorf("%s - invalid public key: %w", logPrefix, err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	var (
		publisher events.EventPublisher = &events.LogPublisher{Logger: logger}
		nc        *comms.Conn
	)
	if cfg.COMMSURL != "" {
		nc, err = commsutil.Connect(commsutil.ConnectOptions{
			URL:    cfg.COMMSURL,
			Name:   cfg.COMMSName,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
		}
		defer nc.Close()
		publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{
			Subject: cfg.InteractionSubject,
			Logger:  logger,
		})
	} else {
		logger.Info(fmt.Sprintf("%s - COMMS_URL not set, dispatch events are logged only", logPrefix))
	}

	api, err := restapi.New(cfg.Token, logger)
	if err != nil {
		return fmt.Errorf("%s - failed to create REST client: %w", logPrefix, err)
	}

	disp := dispatcher.NewDispatcher(reg, dispatcher.Options{
		Logger:    logger,
		API:       api,
		Publisher: publisher,
		Metrics:   m,
	})

	s := New(Params{
		Config:     cfg,
		Registry:   reg,
		Dispatcher: disp,
		Verifier:   verifier,
		Encoder:    reply.NewEncoder(nil),
		Metrics:    m,
		Gatherer:   promReg,
		Comms:      nc,
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("%s - Listening for interactions on %s%s", logPrefix, cfg.Addr(), cfg.Route))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	commands, preconditions := reg.Len()
	logger.Info(fmt.Sprintf("%s - Interactions gateway is ready (%d commands, %d preconditions)", logPrefix, commands, preconditions))
	s.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info(fmt.Sprintf("%s - Shutting down", logPrefix))
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%s - HTTP server error: %w", logPrefix, err)
		}
	}

	s.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logger.Warn(fmt.Sprintf("%s - COMMS drain: %v", logPrefix, err))
		}
	}

	logger.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}
