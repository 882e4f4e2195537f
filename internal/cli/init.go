// Package cli provides common CLI initialization utilities shared by the
// command entry point.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/config"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/store"
)

// SetupLogger initializes structured logging with default settings and
// sets it as the process default.
func SetupLogger() *log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore initializes the session store at the given path. Local
// persistence is best effort: when the store cannot be opened the client
// continues with a degraded store that remembers nothing, instead of
// refusing to start. Login and anonymous listing stay available either way.
func InitStore(logger *log.Logger, dbPath string) services.SessionStore {
	sessionStore, err := store.NewSessionStore(dbPath)
	if err != nil {
		logger.Warn("Session persistence unavailable, continuing without saved sessions",
			log.FieldError, err, "path", dbPath)
		return store.NewUnavailable(err)
	}
	return sessionStore
}

// InitPublisher connects the optional mutation-event publisher. Events are
// a side channel, so a connection failure only logs a warning and the
// client runs without them.
func InitPublisher(logger *log.Logger, cfg *config.Config) *events.Publisher {
	if cfg.AMQPURL == "" {
		return nil
	}
	publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Mutation events disabled, AMQP unavailable", log.FieldError, err)
		return nil
	}
	return publisher
}
