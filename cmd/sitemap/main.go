package main

import (
	"context"
	"log"
	"os"

	"github.com/starlitjournals/sitemap/config"
	"github.com/starlitjournals/sitemap/internal/app"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	_, runErr := a.Runner.Run(context.Background())
	a.PushMetrics()
	a.Close()

	if runErr != nil {
		os.Exit(1)
	}
}
