//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// WakeDetector decides whether a short clip contains the wake word.
type WakeDetector interface {
	Detect(ctx context.Context, audio []byte) (bool, error)
}

// MicrophoneSource waits for the wake word, then records until about a second
// of silence (ten seconds at most) and returns the utterance as WAV.
type MicrophoneSource struct {
	stream     *portaudio.Stream
	frame      []int16
	detector   WakeDetector
	sampleRate int
	chunk      time.Duration
	logger     *slog.Logger
}

// NewMicrophoneSource accepts a nil detector, in which case every utterance is recorded.
func NewMicrophoneSource(detector WakeDetector, sampleRate int, chunk time.Duration, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		detector:   detector,
		sampleRate: sampleRate,
		chunk:      chunk,
		logger:     logger,
		frame:      make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone started", "sample_rate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
		m.stream = nil
	}
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	if m.detector != nil {
		if err := m.waitForWakeWord(ctx); err != nil {
			return nil, err
		}
	}

	m.logger.Info("start speaking")
	samples, err := m.recordUtterance(ctx)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(samples, m.sampleRate), nil
}

func (m *MicrophoneSource) waitForWakeWord(ctx context.Context) error {
	m.logger.Info("listening for wake word")

	chunkSamples := int(m.chunk.Seconds() * float64(m.sampleRate))
	for {
		chunk := make([]int16, 0, chunkSamples)
		for len(chunk) < chunkSamples {
			if err := m.read(ctx); err != nil {
				return err
			}
			chunk = append(chunk, m.frame...)
		}

		detected, err := m.detector.Detect(ctx, EncodeWAV(chunk, m.sampleRate))
		if err != nil {
			m.logger.Warn("wake word detection failed", "error", err)
			continue
		}
		if detected {
			return nil
		}
	}
}

func (m *MicrophoneSource) recordUtterance(ctx context.Context) ([]int16, error) {
	const silenceThreshold = int16(500)

	samples := make([]int16, 0, m.sampleRate*5)
	silent := 0

	for {
		if err := m.read(ctx); err != nil {
			return nil, err
		}
		samples = append(samples, m.frame...)

		if isSilent(m.frame, silenceThreshold) {
			silent += len(m.frame)
		} else {
			silent = 0
		}

		if silent > m.sampleRate && len(samples) > m.sampleRate {
			return samples, nil
		}
		if len(samples) > m.sampleRate*10 {
			return samples, nil
		}
	}
}

func (m *MicrophoneSource) read(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.stream.Read(); err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}
	return nil
}

func isSilent(frame []int16, threshold int16) bool {
	for _, s := range frame {
		if s > threshold || s < -threshold {
			return false
		}
	}
	return true
}
