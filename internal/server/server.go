package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lompack/lompack/internal/api"
	"github.com/lompack/lompack/internal/assist"
	"github.com/lompack/lompack/internal/config"
	"github.com/lompack/lompack/internal/home"
	"github.com/lompack/lompack/internal/record"
	"github.com/lompack/lompack/internal/server/endpoints"
	"github.com/lompack/lompack/internal/svcctx"
)

// Server is the main lompack HTTP server. It owns the record store
// lifecycle - opening the database on start and closing it on shutdown.
type Server struct {
	httpServer *http.Server
	homeDir    *home.Dir
	store      *record.Store
	assist     *assist.Client
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the lompack home directory holding the database and media
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// SwaggerSpecPath overrides the default swagger.json location
	SwaggerSpecPath string
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		homeDir, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Home = homeDir
	}

	s := &Server{
		homeDir:   cfg.Home,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	// Assist client follows config; a hot reload swaps it out
	if cfg.ConfigManager != nil {
		s.assist = newAssistClient(cfg.ConfigManager.Get())
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			s.swapAssist(newAssistClient(c))
			cfg.Logger.Info("assist client reloaded from config")
		})
	} else {
		s.assist = assist.New(assist.Config{})
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func newAssistClient(c *config.Config) *assist.Client {
	if c == nil || !c.Assist.Enabled {
		return assist.New(assist.Config{})
	}
	return assist.New(assist.Config{
		APIKey:     config.ResolveEnvVars(c.Assist.APIKey),
		Model:      c.Assist.Model,
		MaxRetries: c.Assist.MaxRetries,
		Timeout:    time.Duration(c.Assist.Timeout * float64(time.Second)),
	})
}

// swapAssist publishes a new assist client. A Services struct handed out
// by withServices is never written again: the swap copies it and replaces
// the pointer, so in-flight requests keep the snapshot they started with.
func (s *Server) swapAssist(client *assist.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assist = client
	if s.services != nil {
		next := *s.services
		next.Assist = client
		s.services = &next
	}
}

// Start starts the server and opens the record store.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	s.logger.Info("opening record store", "path", s.homeDir.DatabasePath())
	store, err := record.Open(s.homeDir.DatabasePath())
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open record store: %w", err)
	}
	s.store = store

	// Create services struct for context enrichment
	s.mu.Lock()
	s.services = &svcctx.Services{
		Store:         s.store,
		Home:          s.homeDir,
		ConfigManager: s.configMgr,
		Assist:        s.assist,
		Logger:        s.logger,
	}
	s.mu.Unlock()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown() // Close the store on HTTP error
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and record store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("record store close error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Store returns the record store.
// Returns nil if the server hasn't started yet.
func (s *Server) Store() *record.Store {
	return s.store
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s.mu.RLock()
		services := s.services
		s.mu.RUnlock()
		if services != nil {
			ctx = svcctx.WithServices(ctx, services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the record store isn't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
