// Package serve implements the HTTP server subcommand.
package serve

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	api "github.com/ankitsingh711/AI-analytics/internal/api/v2"
	"github.com/ankitsingh711/AI-analytics/internal/conf"
	"github.com/ankitsingh711/AI-analytics/internal/datastore"
	"github.com/ankitsingh711/AI-analytics/internal/logging"
)

// shutdownTimeout bounds how long in-flight requests may run during shutdown.
const shutdownTimeout = 10 * time.Second

// Command creates the serve command, which starts the analytics backend.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the drone analytics HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
}

func runServer(settings *conf.Settings) error {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	// Open the store explicitly at process start; it is closed on shutdown.
	if err := datastore.InitializeLogger(""); err != nil {
		logger.Printf("Failed to initialize datastore log file: %v", err)
	}
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Printf("Failed to close datastore: %v", err)
		}
		if err := datastore.CloseLogger(); err != nil {
			logger.Printf("Failed to close datastore log file: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	controller, err := api.New(e, store, settings, logger)
	if err != nil {
		return fmt.Errorf("failed to create API controller: %w", err)
	}
	defer controller.Shutdown()

	// Start the server in a goroutine so signals can be handled below.
	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		logging.Info("Starting web server", "addr", addr, "node", settings.Main.Name)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("web server failed: %w", err)
	case sig := <-quit:
		logging.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	return nil
}
