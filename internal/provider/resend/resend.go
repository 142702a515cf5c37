// Package resend sends transactional e-mail through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/legxcy/outreach-api/internal/provider"
	"github.com/legxcy/outreach-api/internal/retry"
)

const (
	// DefaultBaseURL is the public Resend API root.
	DefaultBaseURL = "https://api.resend.com"

	serviceName = "resend"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("resend api key not set")

// Email is one outbound message.
type Email struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Client posts e-mails to Resend.
type Client struct {
	baseURL string
	apiKey  string
	http    provider.Doer
	policy  retry.Policy
}

// NewClient builds a Resend client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient provider.Doer, apiKey, baseURL string, policy retry.Policy) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		policy:  policy,
	}
}

// Send delivers email and returns the provider message id. Retries reuse one
// idempotency key so a message is never delivered twice.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(email.To) == 0 {
		return "", fmt.Errorf("resend: no recipients")
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	idempotencyKey := uuid.NewString()
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)
		return req, nil
	}

	var resp sendResponse
	if err := provider.CallJSON(ctx, c.http, c.policy, serviceName, build, &resp); err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return resp.ID, nil
}
