package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"map-assistant/internal/domain"
)

type Assistant struct {
	audio      AudioSource
	stt        SpeechToText
	parser     IntentParser
	dispatcher Dispatcher
	notifier   Notifier
	logger     *slog.Logger
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	parser IntentParser,
	dispatcher Dispatcher,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:      audio,
		stt:        stt,
		parser:     parser,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.logger.Info("assistant ready, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOneCommand(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if errors.Is(err, domain.ErrSourceClosed) {
					return err
				}
				a.logger.Error("processing command", "error", err)
			}
		}
	}
}

func (a *Assistant) processOneCommand(ctx context.Context) error {
	audioData, err := a.audio.NextCommand(ctx)
	if err != nil {
		return fmt.Errorf("getting audio: %w", err)
	}

	if len(audioData) == 0 {
		return nil
	}

	start := time.Now()
	var text string

	if directText, isText := isTextCommand(audioData); isText {
		a.logger.Info("received text command directly", "text", directText)
		text = directText
	} else {
		a.logger.Info("received audio", "bytes", len(audioData))

		var err error
		text, err = a.stt.Transcribe(ctx, audioData)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}

		a.logger.Info("transcribed", "text", text, "elapsed", time.Since(start))
	}

	match := a.parser.Explain(text)
	cmd := match.Command

	a.logger.Info("parsed command",
		"command", cmd.Kind,
		"locations", cmd.Locations,
		"rule", match.Label(),
		"elapsed", time.Since(start),
	)

	if cmd.Kind == domain.CommandUnknown {
		a.logger.Warn("unknown command, skipping", "text", text)
		return nil
	}

	if err := a.dispatcher.Dispatch(ctx, text, cmd); err != nil {
		notifyErr := a.notifier.Notify(ctx, fmt.Sprintf("Error: %s", err.Error()))
		if notifyErr != nil {
			a.logger.Error("notifying error", "error", notifyErr)
		}
		return fmt.Errorf("dispatching %s: %w", cmd.Kind, err)
	}

	if err := a.notifier.Notify(ctx, cmd.String()); err != nil {
		a.logger.Error("notifying result", "error", err)
	}

	return nil
}

func isTextCommand(data []byte) (string, bool) {
	if text, ok := strings.CutPrefix(string(data), domain.TextCommandPrefix); ok && text != "" {
		return text, true
	}
	return "", false
}
