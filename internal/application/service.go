package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"map-assistant/internal/domain"
)

var ErrWakeWordDisabled = errors.New("wake word detection not configured")

// Service runs single utterances synchronously, for request/response transports.
type Service struct {
	stt    SpeechToText
	parser IntentParser
	wake   *WakeWordDetector
	logger *slog.Logger
}

// NewService accepts a nil wake detector; Wakeup then returns ErrWakeWordDisabled.
func NewService(stt SpeechToText, parser IntentParser, wake *WakeWordDetector, logger *slog.Logger) *Service {
	return &Service{
		stt:    stt,
		parser: parser,
		wake:   wake,
		logger: logger,
	}
}

func (s *Service) Transcribe(ctx context.Context, audio []byte) (domain.TranscribeResult, error) {
	start := time.Now()

	text, err := s.stt.Transcribe(ctx, audio)
	if err != nil {
		return domain.TranscribeResult{}, fmt.Errorf("transcribing: %w", err)
	}

	result := s.parse(text, start)
	s.logger.Info("transcribe processed",
		"id", result.ID,
		"elapsed", time.Since(start),
		"text", text,
		"command", result.Command.String(),
	)
	return result, nil
}

func (s *Service) ParseText(text string) domain.TranscribeResult {
	result := s.parse(text, time.Now())
	s.logger.Debug("text parsed", "id", result.ID, "text", text, "command", result.Command.String(), "rule", result.Rule)
	return result
}

func (s *Service) Wakeup(ctx context.Context, audio []byte) (bool, error) {
	if s.wake == nil {
		return false, ErrWakeWordDisabled
	}
	return s.wake.Detect(ctx, audio)
}

func (s *Service) parse(text string, start time.Time) domain.TranscribeResult {
	match := s.parser.Explain(text)
	return domain.TranscribeResult{
		ID:        uuid.NewString(),
		Text:      text,
		Command:   match.Command,
		Rule:      match.Label(),
		ElapsedMS: time.Since(start).Milliseconds(),
	}
}
