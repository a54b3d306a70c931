// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the SIA agent platform.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the platform client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTransport
	ErrTypeTimeout
	ErrTypeValidation
	ErrTypeAuth
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeTransport, Message: "platform is unreachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrEmptyText    = &ClientError{Type: ErrTypeValidation, Message: "message text is empty"}
	ErrUnauthorized = &ClientError{Type: ErrTypeAuth, Message: "not authorized"}
)

// =============================================================================
// BASE URL RESOLUTION
// =============================================================================

// DefaultBaseURL is the platform address used when nothing else is set.
const DefaultBaseURL = "http://localhost:8000"

// EnvBaseURL is the environment override for the platform address.
const EnvBaseURL = "SIA_API_BASE_URL"

// ResolveBaseURL picks the platform address: explicit override first,
// then the SIA_API_BASE_URL environment variable, then the default.
// Trailing slashes are stripped so path joins stay predictable.
func ResolveBaseURL(override string) string {
	base := override
	if base == "" {
		base = os.Getenv(EnvBaseURL)
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the platform client.
type ClientConfig struct {
	// BaseURL is the platform base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// StreamTimeout bounds connection establishment for streaming sends;
	// the stream itself is unbounded once the first byte arrives (default: 10s)
	StreamTimeout time.Duration

	// AuthToken is sent as a Bearer token when non-empty
	AuthToken string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		Timeout:       30 * time.Second,
		StreamTimeout: 10 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the SIA agent platform.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// streamClient has no overall timeout: a streaming response stays
	// open for the lifetime of the agent's reply.
	streamClient *http.Client
}

// NewClient creates a platform client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a platform client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = ResolveBaseURL("")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 10 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: config.StreamTimeout,
			},
		},
	}
}

// BaseURL returns the resolved platform address.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// MESSAGE SENDING
// =============================================================================

// SendStream posts a user message with streaming enabled and returns the
// raw SSE response body. The caller owns the body and must close it.
func (c *Client) SendStream(ctx context.Context, agentID string, req SendRequest) (io.ReadCloser, error) {
	if err := validateSend(agentID, req); err != nil {
		return nil, err
	}
	req.Stream = true
	req.Channel = "web"

	httpReq, err := c.newWebhookRequest(ctx, agentID, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return resp.Body, nil
}

// Send posts a user message without streaming. The platform acknowledges
// with a job id and delivers the reply out of band.
func (c *Client) Send(ctx context.Context, agentID string, req SendRequest) (*JobAccepted, error) {
	if err := validateSend(agentID, req); err != nil {
		return nil, err
	}
	req.Stream = false
	req.Channel = "web"

	httpReq, err := c.newWebhookRequest(ctx, agentID, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, statusError(resp)
	}

	var job JobAccepted
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &job, nil
}

// validateSend rejects bad input before any bytes go on the wire.
func validateSend(agentID string, req SendRequest) error {
	if agentID == "" {
		return &ClientError{Type: ErrTypeValidation, Message: "agent id is empty"}
	}
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// newWebhookRequest builds the POST {base}/webhooks/{agentId} request.
func (c *Client) newWebhookRequest(ctx context.Context, agentID string, req SendRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/webhooks/"+agentID, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)
	return httpReq, nil
}

// =============================================================================
// AGENT DISCOVERY
// =============================================================================

// ListAgents retrieves the configured agents from the platform.
func (c *Client) ListAgents(ctx context.Context) ([]AgentInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/agents", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result AgentList
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode agent list", Cause: err}
	}
	return result.Agents, nil
}

// =============================================================================
// AUTH
// =============================================================================

// VerifyAuth checks whether the configured token is still accepted.
func (c *Client) VerifyAuth(ctx context.Context) (*AuthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/auth/verify", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthStatus{Valid: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var status AuthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode auth status", Cause: err}
	}
	return &status, nil
}

// Logout invalidates the current session on the platform.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/auth/logout", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}

// setAuth attaches the Bearer token when one is configured.
func (c *Client) setAuth(req *http.Request) {
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

// wrapTransport maps a low-level HTTP error to the client taxonomy.
func wrapTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &ClientError{Type: ErrTypeTransport, Message: "request failed", Cause: err}
}

// statusError maps a non-success HTTP status to the client taxonomy,
// carrying the start of the response body for diagnostics.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := "unexpected status " + resp.Status
	if len(body) > 0 {
		msg += ": " + strings.TrimSpace(string(body))
	}

	errType := ErrTypeTransport
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = ErrTypeAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		errType = ErrTypeValidation
	}
	return &ClientError{Type: errType, Message: msg}
}
