// internal/common/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	stderrors "report-intake/internal/common/errors"
	commonhttp "report-intake/internal/common/http"
)

var (
	ErrRequestFailed = errors.New("GENAI_REQUEST_FAILED")
	ErrTimeout       = errors.New("GENAI_TIMEOUT")
)

// Config holds connection settings for the text-generation service.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the external text-generation/intent service. Every
// method returns an explicit error; callers are expected to degrade to
// deterministic fallbacks, never to crash.
type Client struct {
	config *Config
	client *commonhttp.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
	}
}

// IntentResult is the service's classification of a free-text message.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// ParseIntent classifies a user message. Intents follow the service's
// vocabulary: "provide_answer", "decline", "general_query".
func (c *Client) ParseIntent(ctx context.Context, message string) (*IntentResult, error) {
	body := map[string]interface{}{"query": message}

	var result IntentResult
	if err := c.postJSON(ctx, "/api/ai/parse-intent", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchResource asks the service to look up a named resource. A nil
// payload with nil error means the service answered but found nothing.
func (c *Client) SearchResource(ctx context.Context, resourceType, query, vendor string) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"resourceType": resourceType,
		"query":        query,
	}
	if vendor != "" {
		body["vendor"] = vendor
	}

	var result struct {
		Found bool                   `json:"found"`
		Data  map[string]interface{} `json:"data"`
	}
	if err := c.postJSON(ctx, "/api/ai/resource-search", body, &result); err != nil {
		return nil, err
	}
	if !result.Found {
		return nil, nil
	}
	return result.Data, nil
}

// Generate returns free text for a prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]interface{}{"prompt": prompt}

	var result struct {
		Text string `json:"text"`
	}
	if err := c.postJSON(ctx, "/api/ai/generate", body, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// postJSON issues a POST with bounded timeout and exponential-backoff
// retries. Context expiry is reported as ErrTimeout immediately.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrTimeout
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+path, bytes.NewReader(payload))
		if reqErr != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return ErrTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrRequestFailed, lastErr)
	}

	if resp == nil {
		return fmt.Errorf("%w: no successful response after retries", ErrRequestFailed)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrRequestFailed, err)
	}
	return nil
}

// AsStandardError maps client errors onto the shared taxonomy.
func AsStandardError(err error) *stderrors.StandardError {
	if errors.Is(err, ErrTimeout) {
		return stderrors.Wrap(stderrors.ErrCodeIntentAPITimeout, "text-generation service timed out", err)
	}
	return stderrors.Wrap(stderrors.ErrCodeCollaboratorFailure, "text-generation service failed", err)
}
