package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	feature "github.com/Flagsmith/flagsmith-go-feature"
	"github.com/Flagsmith/flagsmith-go-feature/ambient"
	"github.com/Flagsmith/flagsmith-go-feature/flagsmithprovider"
)

type response struct {
	ShowButton   bool     `json:"show_button"`
	EnabledFlags []string `json:"enabled_flags"`
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := feature.LoadConfig()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flags := feature.New("example", cfg,
		flagsmithprovider.New(flagsmithprovider.WithSlogLogger(log)),
		feature.WithSlogLogger(log),
		feature.WithEnvironment(feature.Environment(os.Getenv("APP_ENV"))),
	)
	if err := flags.Init(ctx); err != nil {
		log.Error("failed to start feature flags", "error", err)
		os.Exit(1)
	}
	defer flags.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if identifier := r.URL.Query().Get("identifier"); identifier != "" {
			ambient.SetUser(r.Context(), identifier, r.URL.Query().Get("session"))
		}

		resp := response{
			ShowButton: flags.IsEnabled(r.Context(), "secret_button", feature.EvaluationContext{}),
		}
		resp.EnabledFlags = ambient.FeatureFlags(r.Context())

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	srv := &http.Server{
		Addr:              ":5000",
		Handler:           ambient.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
	}
}
