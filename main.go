package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bnta-demo/microservices/tasks-service/config"
	"bnta-demo/microservices/tasks-service/handlers"
	"bnta-demo/microservices/tasks-service/health"
	"bnta-demo/microservices/tasks-service/logging"
	"bnta-demo/microservices/tasks-service/repositories"
	"bnta-demo/microservices/tasks-service/services"
	"bnta-demo/microservices/tasks-service/tracing"

	"github.com/charmbracelet/log"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level)
	if err := run(cfg, logger); err != nil {
		logger.Fatal("tasks service failed", "err", err)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(cfg config.Config, logger *log.Logger) error {
	tracer, shutdownTracing, err := tracing.Setup(cfg.Tracing.JaegerAddress)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	// Handle shutdown properly so nothing leaks.
	defer func() { _ = shutdownTracing(context.Background()) }()

	healthServer := health.NewServer(logger.WithPrefix("grpc"))
	if cfg.GRPC.Address != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return fmt.Errorf("failed to listen for grpc: %w", err)
		}
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("grpc server stopped", "err", err)
			}
		}()
		defer healthServer.Stop()
	}

	// Set up a timeout context
	timeoutContext, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storeLogger := logger.WithPrefix("task-store")
	taskRepository, closeStore, err := repositories.New(timeoutContext, cfg.Store, storeLogger, tracer)
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Error("failed to close task store", "err", err)
		}
	}()

	taskService := services.NewTaskService(taskRepository, logger.WithPrefix("tasks"), tracer)

	if cfg.Seed.Enabled {
		if _, err := taskService.Seed(timeoutContext); err != nil {
			return fmt.Errorf("failed to seed tasks: %w", err)
		}
	}

	httpLogger := logger.WithPrefix("http")
	taskHandler := handlers.NewTaskHandler(taskService, httpLogger, tracer, cfg.HTTP.BindPathID)

	server := &http.Server{
		Handler:           handlers.NewRouter(taskHandler, cfg.HTTP, httpLogger),
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("could not listen on %s: %w", cfg.HTTP.Address, err)
		}
	}()
	healthServer.Ready()
	logger.Info("tasks service is running", "address", cfg.HTTP.Address, "store", cfg.Store.Backend)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		healthServer.NotReady()
		return err
	case sig := <-sigCh:
		logger.Info("received terminate, graceful shutdown", "signal", sig.String())
	}
	healthServer.NotReady()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("cannot gracefully shutdown", "err", err)
	}
	logger.Info("server stopped")
	return nil
}
