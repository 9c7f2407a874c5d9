package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/tkarvinen/pokedex-go/cmd"
	"github.com/tkarvinen/pokedex-go/internal/conf"
	"github.com/tkarvinen/pokedex-go/internal/logging"
)

// version and buildDate are filled at build time via ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// A local .env is optional, environment variables win either way
	if err := godotenv.Load(); err == nil {
		fmt.Println("Environment variables loaded from .env file")
	}

	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	// Route the default logger to the configured rotating log file
	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, settings.Main.Name, level)
		if err != nil {
			log.Printf("Warning: failed to initialize file logging at %s: %v", settings.Main.Log.Path, err)
		} else {
			slog.SetDefault(fileLogger)
			defer func() {
				if err := closeLogger(); err != nil {
					log.Printf("Error closing log file: %v", err)
				}
			}()
		}
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
