package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"map-assistant/internal/domain"
)

var ErrUnknownWakeWord = errors.New("wake word not in classifier label set")

// AudioClassifier labels a short audio clip, e.g. a speech-commands model.
type AudioClassifier interface {
	Classify(ctx context.Context, audio []byte) ([]domain.Prediction, error)
	Labels(ctx context.Context) ([]string, error)
}

type WakeWordDetector struct {
	classifier AudioClassifier
	word       string
	threshold  float64
}

// NewWakeWordDetector fails with ErrUnknownWakeWord when the classifier cannot
// emit word as a label.
func NewWakeWordDetector(ctx context.Context, classifier AudioClassifier, word string, threshold float64) (*WakeWordDetector, error) {
	labels, err := classifier.Labels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching classifier labels: %w", err)
	}

	word = strings.ToLower(strings.TrimSpace(word))
	known := slices.ContainsFunc(labels, func(l string) bool {
		return strings.EqualFold(l, word)
	})
	if !known {
		sorted := slices.Clone(labels)
		slices.Sort(sorted)
		return nil, fmt.Errorf("%w: %q, pick one of: %s", ErrUnknownWakeWord, word, strings.Join(sorted, ", "))
	}

	return &WakeWordDetector{
		classifier: classifier,
		word:       word,
		threshold:  threshold,
	}, nil
}

func (d *WakeWordDetector) Word() string {
	return d.word
}

// Detect reports whether any prediction carries the wake word with a score
// strictly above the threshold.
func (d *WakeWordDetector) Detect(ctx context.Context, audio []byte) (bool, error) {
	predictions, err := d.classifier.Classify(ctx, audio)
	if err != nil {
		return false, fmt.Errorf("classifying audio: %w", err)
	}

	for _, p := range predictions {
		if strings.EqualFold(p.Label, d.word) && p.Score > d.threshold {
			return true, nil
		}
	}
	return false, nil
}
