// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archetype-resolver/internal/app"
	"archetype-resolver/internal/common/camunda"
	"archetype-resolver/internal/common/config"
	"archetype-resolver/internal/common/logger"
	"archetype-resolver/internal/common/observability"

	ra "archetype-resolver/internal/workers/archetype/resolve-archetypes"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Warn("log output unavailable, using stderr", map[string]interface{}{"error": err.Error()})
	}
	log = log.WithFields(map[string]interface{}{"service": cfg.App.Name})
	log.Info("Starting worker manager...", map[string]interface{}{"version": cfg.App.Version})

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	var a *app.App
	err = retryWithBackoff(func() error {
		var err error
		a, err = app.New(ctx, cfg, log)
		return err
	}, 5, 2*time.Second, log, "Archetype backend initialization")
	if err != nil {
		log.Error("archetype backend failed after retries", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer a.Close()

	if r, err := a.Resolver(); err == nil && r.AgeClasses() != nil {
		obs.RecordAgeClasses(ctx, r.Name(), len(r.AgeClasses().Entries()))
	}

	exporters, err := a.Exporters(ctx)
	if err != nil {
		log.Error("report sinks failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda, log)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		log.Error("zeebe client failed after retries", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("Zeebe client connected successfully", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	if config.IsWorkerEnabled(cfg, ra.TaskType) {
		handler := ra.NewHandler(ra.LoadConfig(cfg), a.Factory, obs, log, exporters...)
		zeebe.Open(ra.TaskType, config.GetWorkerConfig(cfg, ra.TaskType), handler.Handle)
	}

	checks := a.Checks()
	checks["zeebe"] = zeebe.HealthCheck
	srv := &http.Server{Addr: cfg.Metrics.Address, Handler: healthMux(checks)}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped gracefully", nil)
}

func healthMux(checks map[string]func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		deps := map[string]string{}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		if status != http.StatusOK {
			writeStatus(w, status, "not ready", deps)
			return
		}
		writeStatus(w, status, "ready", deps)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string, deps map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"deps":   deps,
		"time":   time.Now().Format(time.RFC3339),
	})
}
