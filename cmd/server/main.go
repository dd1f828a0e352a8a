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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github-lite/internal/handlers"
	"github-lite/internal/metrics"
	"github-lite/internal/middleware"
	"github-lite/internal/upstream"
	"github-lite/pkg/config"
)

// Create a logger instance
var log = logrus.New()

func main() {
	log.Println("🚀 Starting github-lite login relay...")

	configuration, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	configureLogger(log, configuration.Logging)

	log.Printf("✅ Configuration loaded successfully")
	log.Printf("🔧 Log Level: %s, Format: %s", configuration.Logging.Level, configuration.Logging.Format)
	log.Printf("🔐 GitHub app: %s", configuration.GitHub)
	if configuration.DevRedirect.Enabled {
		log.Warnf("⚠️ Dev redirect helper is enabled, do not run this in production")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.Server.Port),
		Handler:      newRouter(configuration, log, registry),
		ReadTimeout:  time.Duration(configuration.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(configuration.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("🌐 Login relay listening on port %d", configuration.Server.Port)
		log.Printf("🎫 Token exchange: POST /login")
		log.Printf("🏥 Health check: /health")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configuration.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("❌ Graceful shutdown failed: %v", err)
	}
}

func configureLogger(logger *logrus.Logger, cfg config.LoggingConfig) {
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// newRouter wires handlers, metrics and middleware
func newRouter(configuration *config.Config, logger *logrus.Logger, registry *prometheus.Registry) http.Handler {
	collector := metrics.NewMetricsCollector(registry, logger)

	exchanger := upstream.NewExchanger(configuration.GitHub, logger)
	exchanger.Observer = collector

	login := handlers.NewLoginHandler(configuration, logger, exchanger, collector)
	limitLogin := middleware.RateLimit(configuration.Server.RateLimitPerMinute)

	mux := http.NewServeMux()
	mux.Handle("/login", limitLogin(login))
	mux.Handle("/health", handlers.NewHealthHandler(configuration, logger))
	mux.Handle("/version", handlers.NewVersionHandler(logger))
	mux.Handle("/metrics", collector.Handler())
	mux.Handle("/", rootHandler(limitLogin(login)))

	logger.Printf("✅ Routes set up successfully")

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(logger),
		collector.Middleware,
		middleware.Recover(logger),
	)
}

// rootHandler also serves the login relay at "/" and 404s any other unknown path
func rootHandler(login http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		login.ServeHTTP(w, r)
	})
}
