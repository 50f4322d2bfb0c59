package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"campaign-flow/pkg/config"
	"campaign-flow/pkg/db"
	"campaign-flow/pkg/flowgraph"
	"campaign-flow/services/flow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("FLOW_CONFIG"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	var repo flow.FlowRepo
	switch cfg.Store {
	case "memory":
		mem := flow.NewMemoryRepository()
		if cfg.Database.Seed {
			if err := mem.Seed(ctx); err != nil {
				slog.Error("Failed to seed memory store", "error", err)
				return
			}
		}
		repo = mem
		slog.Info("Using in-memory flow store")

	default:
		pool, err := db.Connect(ctx, db.Config{
			URI:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MinConns,
			ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute,
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			return
		}
		defer pool.Close()

		// Initialize database schema and optionally the sample flow
		pgRepo := flow.NewRepository(pool)
		if cfg.Database.Seed {
			err = flow.InitDB(ctx, pool)
		} else {
			err = pgRepo.InitSchema(ctx)
		}
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			return
		}
		repo = pgRepo
	}

	// setup router
	mainRouter := mux.NewRouter()

	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()

	flowService := flow.NewService(repo, flow.Options{
		Catalog:     flowgraph.NewCatalog(cfg.Editor.DefaultSender),
		TeamMembers: cfg.Editor.Team,
	})
	flowService.LoadRoutes(apiRouter)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: corsHandler,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", cfg.Server.Addr, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
