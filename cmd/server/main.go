package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"codebuds/internal/api"
	"codebuds/internal/config"
	"codebuds/internal/events"
	"codebuds/internal/exec"
	"codebuds/internal/routers"
	"codebuds/internal/session"
	"codebuds/internal/utils"
)

// Seams for tests.
var (
	listenAndServe = http.ListenAndServe
	exitFunc       = func(err error) { log.Fatal(err) }
)

func run(_ context.Context) error {
	logger := utils.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var sink session.Sink
	if cfg.RedisAddr != "" {
		pub := events.NewPublisher(cfg.RedisAddr, logger)
		defer pub.Close()
		sink = pub
		logger.Info("room event publishing enabled", "addr", cfg.RedisAddr)
	}

	hub := session.NewHub(logger, cfg.GracePeriod, sink)
	handlers := api.NewHandlers(logger, hub, exec.NewRunner(cfg.SandboxURL), cfg.SendBuffer)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Mount("/", routers.New(handlers))

	addr := ":" + cfg.Port
	logger.Info("session service listening", "addr", addr)
	return listenAndServe(addr, r)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
