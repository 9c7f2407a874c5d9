package serve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	api "github.com/tkarvinen/pokedex-go/internal/api/v1"
	"github.com/tkarvinen/pokedex-go/internal/conf"
	"github.com/tkarvinen/pokedex-go/internal/datastore"
)

// Command creates the serve command which runs the HTTP API server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server",
		Long:  "Start the HTTP server exposing the catalog REST API and uploaded image assets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the web server")
	cmd.Flags().BoolVar(&settings.WebServer.Debug, "webdebug", viper.GetBool("webserver.debug"), "Enable web server debug logging")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

// runServer opens the entity store, wires the API controller and serves
// until an interrupt or termination signal arrives.
func runServer(settings *conf.Settings) error {
	store := datastore.New(settings)
	if store == nil {
		return errors.New("no entity store enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open entity store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing entity store: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	controller, err := api.New(e, store, settings, log.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize API controller: %w", err)
	}
	defer controller.Shutdown()

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		log.Printf("Starting server on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
