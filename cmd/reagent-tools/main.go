package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/reagent-ai/reagent/pkg/toolserver"
	"github.com/rs/zerolog"
)

func main() {
	webhookBase := flag.String("webhook-base", os.Getenv("REAGENT_WEBHOOK_BASE"), "base URL for automation webhooks")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	// stdout is the protocol channel; all logging goes to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	server := toolserver.New("reagent-tools", "0.1.0", toolserver.WithLogger(logger))
	if err := toolserver.RegisterBuiltins(server, toolserver.BuiltinConfig{
		WebhookBaseURL: *webhookBase,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register builtin tools")
	}

	if err := server.Serve(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Tool server failed")
	}
}
