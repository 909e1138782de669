// Package huggingface classifies short audio clips with a hosted
// audio-classification model, used for wake-word detection.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"map-assistant/internal/domain"
	"map-assistant/internal/infra"
)

const (
	defaultInferenceURL = "https://api-inference.huggingface.co"
	defaultHubURL       = "https://huggingface.co"
)

type Classifier struct {
	apiKey       string
	model        string
	inferenceURL string
	hubURL       string
	httpClient   *http.Client

	mu     sync.Mutex
	labels []string
}

func NewClassifier(apiKey, model string) *Classifier {
	return NewClassifierWithURLs(apiKey, model, defaultInferenceURL, defaultHubURL)
}

func NewClassifierWithURLs(apiKey, model, inferenceURL, hubURL string) *Classifier {
	return &Classifier{
		apiKey:       apiKey,
		model:        model,
		inferenceURL: strings.TrimSuffix(inferenceURL, "/"),
		hubURL:       strings.TrimSuffix(hubURL, "/"),
		httpClient:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Classify returns the model's label predictions for the clip, best first.
func (c *Classifier) Classify(ctx context.Context, audio []byte) ([]domain.Prediction, error) {
	var predictions []domain.Prediction

	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL+"/models/"+c.model, bytes.NewReader(audio))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		body, err := c.do(req)
		if err != nil {
			return err
		}

		if err := json.Unmarshal(body, &predictions); err != nil {
			return fmt.Errorf("decoding predictions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return predictions, nil
}

// Labels lists the classes the model can emit, read from label2id in the
// model config. The result is cached after the first successful call.
func (c *Classifier) Labels(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.labels != nil {
		return c.labels, nil
	}

	var config struct {
		Label2ID map[string]int `json:"label2id"`
	}

	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		url := fmt.Sprintf("%s/%s/resolve/main/config.json", c.hubURL, c.model)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		body, err := c.do(req)
		if err != nil {
			return err
		}

		if err := json.Unmarshal(body, &config); err != nil {
			return fmt.Errorf("decoding model config: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(config.Label2ID) == 0 {
		return nil, fmt.Errorf("model %s has no label2id in its config", c.model)
	}

	labels := make([]string, 0, len(config.Label2ID))
	for label := range config.Label2ID {
		labels = append(labels, label)
	}
	c.labels = labels

	return labels, nil
}

func (c *Classifier) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, infra.Retryable(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, infra.StatusError("huggingface", resp.StatusCode, body)
	}

	return body, nil
}
