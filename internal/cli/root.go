// Package cli wires the survey commands: taking a survey by voice, survey
// authoring and listing, aggregated results, and the submission spool.
package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voice-survey/config"
	"voice-survey/internal/application"
	"voice-survey/internal/infra/identity"
	"voice-survey/internal/infra/surveyapi"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "voicesurvey",
	Short:         "Voice-driven surveys from the terminal",
	Long:          "voicesurvey takes spoken surveys (prompts read aloud, answers captured by microphone), creates and lists surveys, and aggregates their results.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to config file")
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, err
		}
		cfg = config.Default()
	}
	return cfg, setupLogger(cfg.Log), nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func tokenSource(cfg *config.Config) application.TokenSource {
	if cfg.Auth.RefreshToken == "" {
		return nil
	}
	return identity.NewClient(cfg.Auth.TokenURL, cfg.Auth.APIKey, cfg.Auth.RefreshToken)
}

func apiClient(cfg *config.Config) *surveyapi.Client {
	return surveyapi.NewClient(cfg.API.BaseURL, tokenSource(cfg))
}
