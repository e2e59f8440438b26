package main

import (
	"fmt"
	"os"

	"github.com/ankitsingh711/AI-analytics/cmd"
	"github.com/ankitsingh711/AI-analytics/internal/conf"
	"github.com/ankitsingh711/AI-analytics/internal/logging"
)

// Version and build date are set at build time via ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
