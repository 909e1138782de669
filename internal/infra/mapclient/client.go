// Package mapclient forwards parsed commands to the map front end's control
// webhook.
package mapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"map-assistant/internal/domain"
	"map-assistant/internal/infra"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Action is the payload the map front end receives.
type Action struct {
	ID        string             `json:"id"`
	Command   domain.CommandKind `json:"command"`
	Locations []string           `json:"locations"`
	Text      string             `json:"text"`
}

func (c *Client) Dispatch(ctx context.Context, text string, cmd domain.Command) error {
	action := Action{
		ID:        uuid.NewString(),
		Command:   cmd.Kind,
		Locations: cmd.Locations,
		Text:      text,
	}
	if action.Locations == nil {
		action.Locations = []string{}
	}

	body, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshaling action: %w", err)
	}

	if err := c.doRequest(ctx, http.MethodPost, "/commands", body); err != nil {
		return fmt.Errorf("dispatching %s: %w", cmd.Kind, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) error {
	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return infra.Retryable(fmt.Errorf("sending request: %w", err))
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("unauthorized: check dispatch.token")
		}

		if resp.StatusCode >= 300 {
			return infra.StatusError("map", resp.StatusCode, respBody)
		}

		return nil
	})
}
