// main is the entry point of the People API server.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the SQLite database and the email outbox
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/people-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/people-api
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

	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/http/handlers/person"
	"github.com/aanand-mishra/people-api/internal/outbox"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting people-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage and Outbox ──────────────────────────────────
	db, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	box, err := outbox.Open(cfg.OutboxPath)
	if err != nil {
		log.Error("failed to open outbox",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer box.Close()

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: newRouter(db, box),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ErrServerClosed is the expected result of Shutdown.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// newRouter builds the route table:
//
//	POST   /api/people                    → create a person
//	GET    /api/people                    → list all people
//	GET    /api/people/adults             → list adults only
//	GET    /api/people/{id}               → get one person
//	PUT    /api/people/{id}               → replace a person
//	DELETE /api/people/{id}               → delete a person
//	GET    /api/people/{id}/greet/{other} → greeting from id to other
//	GET    /api/people/{id}/greeting      → self-introduction
//	POST   /api/people/{id}/email         → simulated email send
func newRouter(s storage.Storage, box *outbox.Outbox) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("POST /api/people", person.New(s))
	router.HandleFunc("GET /api/people", person.GetList(s))
	router.HandleFunc("GET /api/people/adults", person.GetAdults(s))
	router.HandleFunc("GET /api/people/{id}", person.GetByID(s))
	router.HandleFunc("PUT /api/people/{id}", person.Update(s))
	router.HandleFunc("DELETE /api/people/{id}", person.Delete(s))
	router.HandleFunc("GET /api/people/{id}/greet/{other}", person.Greet(s))
	router.HandleFunc("GET /api/people/{id}/greeting", person.Introduce(s))
	router.HandleFunc("POST /api/people/{id}/email", person.SendEmail(s, box))

	return router
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
