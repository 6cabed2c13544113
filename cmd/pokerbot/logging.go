package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

func createBotLogger(w io.Writer, level string, jsonFormat bool) zerolog.Logger {
	zLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if jsonFormat {
		logger = zerolog.New(w)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w})
	}

	return logger.Level(zLevel).With().Timestamp().Logger()
}

func createServerLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
