// Venombot - chat utility and mini-game bot
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rishx/venombot/internal/bot"
	"github.com/rishx/venombot/internal/config"
	"github.com/rishx/venombot/internal/httpapi"
	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/weather"
	"github.com/rishx/venombot/internal/wiki"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting bot", "port", cfg.Port, "prefix", cfg.Prefix, "session_timeout", cfg.SessionTimeout)

	// Initialize dependencies.
	rest := platform.NewRest(cfg.Token)

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	self, err := rest.Me(startCtx)
	startCancel()
	if err != nil {
		slog.Error("Failed to fetch the bot's own user", "error", err)
		os.Exit(1)
	}
	slog.Info("Authenticated", "user", self.Username, "id", self.ID)

	weatherClient := weather.NewClient(cfg.WeatherAPIKey)
	airClient := weather.NewAirClient(cfg.RapidAPIKey)
	wikiClient := wiki.NewClient()

	b := bot.New(cfg, rest, *self, weatherClient, airClient, wikiClient)

	gw := platform.NewGateway(cfg.Token, b)
	b.SetLatencySource(gw.Latency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the session janitor.
	b.Sessions().StartJanitor(ctx, cfg.SessionGrace)

	// Register slash commands (optional, needs the application id).
	if cfg.AppID != "" {
		regCtx, regCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := rest.RegisterCommands(regCtx, cfg.AppID, b.CommandSpecs()); err != nil {
			slog.Warn("Slash command registration failed", "error", err)
		} else {
			slog.Info("Slash commands registered", "count", len(b.CommandSpecs()))
		}
		regCancel()
	} else {
		slog.Info("APP_ID not set, skipping slash command registration")
	}

	// Initialize handlers.
	apiHandler, err := httpapi.NewHandler(b, b.Sessions(), cfg.PublicKey)
	if err != nil {
		slog.Error("Failed to initialize HTTP handler", "error", err)
		os.Exit(1)
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	apiHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the gateway connection.
	go gw.Run(ctx)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Bot stopped successfully")
}
