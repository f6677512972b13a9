package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			catalog = svc
		} else {
			logger.Warnf("spotify service unavailable: %v", err)
		}
	}

	feedClient := &http.Client{Timeout: time.Duration(config.Feed.TimeoutSeconds) * time.Second}
	source := services.NewPitchforkSource(services.PitchforkOpts{
		FeedURL:    config.Feed.URL,
		UserAgent:  config.Feed.UserAgent,
		MaxReviews: config.Feed.MaxReviews,
		HTTPClient: feedClient,
		Logger:     logger,
	})

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Source:  source,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "crate",
		Usage:    "Catalog Pitchfork album reviews against your Spotify library",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else if errors.Is(err, shared.ErrUnauthorized) {
			logger.Fatalf("session expired, run 'crate auth login': %v", err)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
