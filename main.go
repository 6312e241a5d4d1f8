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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"terraprime/api"
	"terraprime/internal/collections"
	"terraprime/internal/config"
	"terraprime/internal/gateway"
	"terraprime/internal/leads"
	"terraprime/internal/payments"
	"terraprime/internal/projects"
	"terraprime/internal/reports"
	"terraprime/internal/sales"
	"terraprime/internal/session"
	"terraprime/internal/users"
	"terraprime/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	gin.SetMode(gin.ReleaseMode)
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gw := gateway.New(gateway.Options{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout}, logger)
	defer gw.Close()

	salesService := sales.NewService(sales.NewHTTPRepository(gw), logger)
	paymentsService := payments.NewService(payments.NewHTTPRepository(gw), logger)
	wizardService := wizard.NewService(wizard.NewLocalStorage(), salesService, paymentsService, cfg.DraftTTL, logger)
	if err := wizardService.StartEviction("@every 1m"); err != nil {
		return fmt.Errorf("schedule draft eviction: %w", err)
	}
	defer wizardService.StopEviction()

	limiter := api.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst, logger)
	housekeeping := cron.New()
	if _, err := housekeeping.AddFunc("@every 5m", limiter.Cleanup); err != nil {
		return fmt.Errorf("schedule limiter cleanup: %w", err)
	}
	housekeeping.Start()
	defer housekeeping.Stop()

	metrics := api.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(gateway.Collectors()...)
	registry.MustRegister(metrics.Collectors()...)

	r := gin.New()
	api.InitRoutes(r, api.Deps{
		Logger:         logger,
		Sessions:       session.NewParser(cfg.SessionSecret),
		Limiter:        limiter,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Leads:          leads.NewService(leads.NewHTTPRepository(gw), logger),
		Projects:       projects.NewService(projects.NewHTTPRepository(gw), logger),
		Sales:          salesService,
		Payments:       paymentsService,
		Collections:    collections.NewService(collections.NewHTTPRepository(gw), logger),
		Users:          users.NewService(users.NewHTTPRepository(gw), logger),
		Reports:        reports.NewService(gw, cfg.ReportTimeout, logger),
		Wizard:         wizardService,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
