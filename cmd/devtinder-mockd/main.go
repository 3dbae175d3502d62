// Devtinder-mockd runs an in-memory DevTinder API for local development.
//
// It serves the full REST surface with a seeded demo dataset. Every account
// uses the password "devtinder". Nothing persists across restarts.
//
// Usage:
//
//	# Serve on the default port
//	devtinder-mockd
//
//	# Then point the client at it
//	DEVTINDER_API_BASE_URL=http://localhost:3000 devtinder
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devtinder/devtinder/internal/logging"
	"github.com/devtinder/devtinder/internal/mockapi"
)

func main() {
	host := flag.String("host", "localhost", "listen host")
	port := flag.Int("port", 3000, "listen port")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	if err := run(logger, *host, *port); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(logger *zap.Logger, host string, port int) error {
	srv, err := mockapi.NewServer(logger, &mockapi.Config{Host: host, Port: port})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
