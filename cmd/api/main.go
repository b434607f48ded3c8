package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/tagobuyhelp/YellowTeaBackend/internal/config"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/database"
	idempostgres "github.com/tagobuyhelp/YellowTeaBackend/internal/idempotency/postgres"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/notify"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/adapters"
	httpadapter "github.com/tagobuyhelp/YellowTeaBackend/internal/orders/adapters/http"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/adapters/memory"
	orderspostgres "github.com/tagobuyhelp/YellowTeaBackend/internal/orders/adapters/postgres"
	ordersapp "github.com/tagobuyhelp/YellowTeaBackend/internal/orders/app"
	ordersmetrics "github.com/tagobuyhelp/YellowTeaBackend/internal/orders/metrics"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/razorpay"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/shiprocket"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	if err := database.RegisterPoolStats(meter, pool); err != nil {
		logger.Error("failed to register pool stats", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	notifyMetrics, err := notify.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create notification metrics", "error", err)
		os.Exit(1)
	}

	repo := adapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	idemStore := idempostgres.NewStore(pool)
	notifier := adapters.NewObservableNotifier(notify.NewNoopNotifier(), notifyMetrics)

	gateway := razorpay.NewClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Timeout)
	verifier := razorpay.NewVerifier(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)

	var shipping ports.ShippingProvider
	if cfg.Shiprocket.Enabled {
		shipping = shiprocket.NewClient(
			cfg.Shiprocket.BaseURL,
			cfg.Shiprocket.Email,
			cfg.Shiprocket.Password,
			cfg.Shiprocket.PickupPostcode,
			cfg.Shiprocket.PickupLocation,
			cfg.Shiprocket.Timeout,
		)
	} else {
		shipping = memory.NewShippingStub()
	}

	// Catalog and coupon data live in the storefront service; until its
	// lookup API is wired in, checkout only accepts inline item snapshots.
	catalog := memory.NewCatalog()
	coupons := memory.NewCouponStore()

	service := ordersapp.NewService(ordersapp.Dependencies{
		Repo:      repo,
		Catalog:   catalog,
		Coupons:   coupons,
		Gateway:   gateway,
		Verifier:  verifier,
		Shipping:  shipping,
		Notifier:  notifier,
		IdemStore: idemStore,
		Logger:    logger,
		Metrics:   orderMetrics,
		Currency:  cfg.Razorpay.Currency,
	})

	if cfg.Shiprocket.Enabled {
		poller := shiprocket.NewPoller(repo, shipping, service, logger, cfg.Shiprocket.PollInterval)
		go poller.Run(ctx)
		logger.Info("shipment poller started", "interval", cfg.Shiprocket.PollInterval.String())
	}

	ordersHandler := httpadapter.NewHandler(service, verifier, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	ordersHandler.Register(mux)

	handler := withRecovery(withLogging(httpadapter.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
