package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/fishcost/internal/config"
	"github.com/Simplici0/fishcost/internal/db"
	"github.com/Simplici0/fishcost/internal/deal"
	"github.com/Simplici0/fishcost/internal/logger"
	"github.com/Simplici0/fishcost/internal/migrations"
	"github.com/Simplici0/fishcost/internal/scheduler"
	"github.com/Simplici0/fishcost/internal/seed"
	"github.com/Simplici0/fishcost/internal/session"
	"github.com/Simplici0/fishcost/internal/store"
)

type server struct {
	auth     *sessionAuth
	sessions *session.Manager
	terms    *deal.Terms
	plant    config.PlantConfig
	logger   *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(logger.New(cfg.LogLevel, cfg.IsDev()))
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if cfg.MigrateOnStart {
		if err := migrations.Up(ctx, database); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
		stats, err := seed.Run(ctx, database)
		if err != nil {
			return fmt.Errorf("seed reference data: %w", err)
		}
		log.Info("reference data ready", zap.Int("inserts", stats.Inserts))
	}

	st := store.New(database)
	rows, err := st.PaymentTerms(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		rows = deal.DefaultTerms()
	}
	terms, err := deal.NewTerms(rows)
	if err != nil {
		return fmt.Errorf("load payment terms: %w", err)
	}

	sessions := session.NewManager(st, cfg.SessionIdleTTL, cfg.Plant.YieldDefinition, logger.Named(log, "session"))
	sched := scheduler.New(cfg.SweepSchedule, sessions, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &server{
		auth:     newSessionAuth(cfg.SessionSecret, !cfg.IsDev()),
		sessions: sessions,
		terms:    terms,
		plant:    cfg.Plant,
		logger:   logger.Named(log, "http"),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.middleware)

		r.Post("/calc/scenario", s.handleScenario)
		r.Post("/calc/matrix", s.handleMatrix)
		r.Post("/calc/reverse", s.handleReverse)
		r.Post("/calc/curve", s.handleCurve)
		r.Get("/calc/break-even", s.handleBreakEven)

		r.Get("/payment-terms", s.handlePaymentTerms)
		r.Post("/deals/simulate", s.handleDeal)

		r.Get("/lots", s.handleLotsList)
		r.Post("/lots", s.handleLotsCreate)
		r.Get("/lots/{id}", s.handleLotGet)
		r.Get("/suppliers", s.handleSuppliers)

		r.Get("/skus", s.handleSKUsList)
		r.Post("/skus", s.handleSKUsCreate)
		r.Put("/skus/{id}", s.handleSKUsUpdate)
		r.Delete("/skus/{id}", s.handleSKUsDelete)

		r.Get("/runs", s.handleRunsList)
		r.Post("/runs", s.handleRunsCreate)
		r.Get("/summary", s.handleSummary)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
