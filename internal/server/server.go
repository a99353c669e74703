package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/bot"
	"github.com/forumkit/aibot/internal/config"
	"github.com/forumkit/aibot/internal/forum"
	"github.com/forumkit/aibot/internal/handlers"
	"github.com/forumkit/aibot/internal/middleware"
	"github.com/forumkit/aibot/internal/tools"
)

// Server hosts the reply-event intake: it owns the forum store, the LLM
// client, and the bot pipeline, and exposes them over HTTP.
type Server struct {
	config *config.Manager
	logger *slog.Logger
	server *http.Server
	store  *forum.SQLiteStore
}

func New(configManager *config.Manager, logger *slog.Logger) *Server {
	return &Server{
		config: configManager,
		logger: logger,
	}
}

func (s *Server) Start() error {
	cfg := s.config.Get()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	store, err := forum.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open forum database: %w", err)
	}
	s.store = store

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	mux, err := s.setupRoutes(cfg)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	s.logger.Info("Starting server", "address", addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing forum database", "error", err)
	}

	s.logger.Info("Server exited")
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes(cfg *config.Config) (*http.ServeMux, error) {
	client := ai.NewClient(BuildClientConfig(cfg), s.logger)

	registry := tools.NewRegistry()
	registry.Register(tools.NewLocalSearch(s.store))
	if cfg.Bot.RemoteSearchURL != "" {
		registry.Register(tools.NewRemoteSearch(cfg.Bot.RemoteSearchURL))
	}

	trigger := bot.NewTriggerService(cfg.Bot)
	generator := bot.NewGenerator(client, s.store, registry, cfg.Bot, s.logger)

	eventHandler := handlers.NewEventHandler(s.store, trigger, generator, cfg.Bot.UserID, s.logger)
	healthHandler := handlers.NewHealthHandler(s.logger)

	middlewareSet := middleware.NewMiddlewareSet(s.config, s.logger)

	mux := http.NewServeMux()
	mux.Handle("/health", middlewareSet.HealthChain().Handler(healthHandler))
	mux.Handle("/events/reply", middlewareSet.DefaultChain().Handler(eventHandler))

	return mux, nil
}

// BuildClientConfig maps stored provider settings into the LLM client's
// configuration.
func BuildClientConfig(cfg *config.Config) ai.ClientConfig {
	providerSettings := make(map[string]ai.ProviderSettings, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providerSettings[p.Name] = ai.ProviderSettings{
			APIKey:      p.APIKey,
			BaseURL:     p.APIBase,
			Model:       p.Model,
			Temperature: p.Temperature,
		}
	}

	return ai.ClientConfig{
		DefaultProvider: cfg.DefaultProvider,
		Providers:       providerSettings,
	}
}
