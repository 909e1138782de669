package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"map-assistant/config"
	"map-assistant/internal/application"
	"map-assistant/internal/infra/api"
	"map-assistant/internal/infra/audio"
	"map-assistant/internal/infra/huggingface"
	"map-assistant/internal/infra/mapclient"
	"map-assistant/internal/infra/openai"
	"map-assistant/internal/infra/pushover"
	"map-assistant/internal/intent"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for voice and text commands and dispatch them to the map",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, setupLogger(cfg.Log, os.Stdout))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	parser := intent.NewParser(nil)

	var stt application.SpeechToText = &application.NoopSTT{}
	if cfg.OpenAI.APIKey != "" {
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Language)
	} else {
		logger.Warn("openai.api_key not set, audio commands will not be transcribed")
	}

	var wake *application.WakeWordDetector
	if cfg.Wake.Enabled {
		classifier := huggingface.NewClassifier(cfg.Wake.APIKey, cfg.Wake.Model)
		detector, err := application.NewWakeWordDetector(ctx, classifier, cfg.Wake.Word, cfg.Wake.Threshold)
		if err != nil {
			return fmt.Errorf("setting up wake word: %w", err)
		}
		wake = detector
		logger.Info("wake word enabled", "word", detector.Word(), "threshold", cfg.Wake.Threshold)
	}

	source, err := createAudioSource(cfg, wake, logger)
	if err != nil {
		return err
	}

	if httpSource, ok := source.(*audio.HTTPSource); ok {
		service := application.NewService(stt, parser, wake, logger)
		api.NewHandler(service, logger).Register(httpSource)
	}

	var dispatcher application.Dispatcher = &application.LogDispatcher{Logger: logger}
	if cfg.Dispatch.URL != "" {
		dispatcher = mapclient.NewClient(cfg.Dispatch.URL, cfg.Dispatch.Token)
	}

	var notifier application.Notifier = &application.NoopNotifier{}
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	}

	assistant := application.NewAssistant(source, stt, parser, dispatcher, notifier, logger)

	logger.Info("starting map assistant",
		"audio_source", cfg.Audio.Source,
		"dispatch", cfg.Dispatch.URL,
	)

	if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("assistant: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func createAudioSource(cfg *config.Config, wake *application.WakeWordDetector, logger *slog.Logger) (application.AudioSource, error) {
	switch cfg.Audio.Source {
	case "http":
		source := audio.NewHTTPSource(cfg.Audio.HTTPAddr, cfg.Audio.AuthToken, cfg.Audio.RateLimit, logger)
		if err := source.TrustProxies(cfg.Audio.TrustedProxies); err != nil {
			return nil, fmt.Errorf("configuring audio.trusted_proxies: %w", err)
		}
		return source, nil
	case "file":
		return audio.NewFileSource(cfg.Audio.FileDir), nil
	case "microphone":
		var detector audio.WakeDetector
		if wake != nil {
			detector = wake
		}
		chunk := time.Duration(cfg.Wake.ChunkMS) * time.Millisecond
		return audio.NewMicrophoneSource(detector, cfg.Audio.SampleRate, chunk, logger), nil
	default:
		return nil, fmt.Errorf("unknown audio source %q", cfg.Audio.Source)
	}
}
