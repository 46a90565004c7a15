// Package cmd implements the moqdump CLI commands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/masq"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
	logger    *slog.Logger

	outWriter io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "moqdump",
	Short: "Inspect CMAF fragments, init segments, and LOC objects",
	Long: `moqdump decodes the wire formats this module implements — CMAF
fragments (styp+moof+mdat), initialization segments (ftyp+moov), and LOC
objects — and prints their box/extension structure as text or JSON.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing moqdump command: %w", err)
	}
	return nil
}

// payloadRedactor redacts any attribute whose key names a bulk media
// payload, so a decoded object's raw bytes never flood the log output.
func payloadRedactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithFieldName("payload"),
		masq.WithFieldName("Payload"),
		masq.WithFieldName("mdat"),
		masq.WithFieldName("Mdat"),
		masq.WithFieldName("codecConfig"),
		masq.WithFieldName("CodecConfig"),
	)
}

func initLogging() error {
	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: payloadRedactor(),
	}

	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger = slog.New(handler)
	return nil
}
