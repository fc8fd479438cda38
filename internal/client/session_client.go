// Package client calls the session-management endpoints from another service
// or a CLI. Calls are not retried; a caller that retries after a lost response
// passes the same idempotency key again and gets the stored response back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/UniqBrio/UniqBrio-sub014/internal/ledger"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

const basePath = "/api/dashboard/services/session-management"

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// SessionClient posts ledger modifications to the session-management API
type SessionClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewSessionClient creates a client for baseURL; token may be empty
func NewSessionClient(baseURL, token string) *SessionClient {
	return &SessionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewIdempotencyKey returns a fresh key for one logical modification
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// Reschedule asks the server to move a session. An empty idempotencyKey
// sends a fresh one.
func (c *SessionClient) Reschedule(ctx context.Context, idempotencyKey string, body *model.RescheduleRequest) (*ledger.Result, error) {
	var out ledger.Result
	if err := c.post(ctx, "/session-reschedules", idempotencyKey, body, &out, "failed to reschedule session"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel asks the server to cancel a session
func (c *SessionClient) Cancel(ctx context.Context, idempotencyKey string, body *model.CancellationRequest) (*ledger.CancelResult, error) {
	var out ledger.CancelResult
	if err := c.post(ctx, "/session-cancellations", idempotencyKey, body, &out, "failed to cancel session"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reassign asks the server to hand a session to another instructor
func (c *SessionClient) Reassign(ctx context.Context, idempotencyKey string, body *model.ReassignmentRequest) (*ledger.Result, error) {
	var out ledger.Result
	if err := c.post(ctx, "/instructor-reassignments", idempotencyKey, body, &out, "failed to reassign instructor"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SessionClient) post(ctx context.Context, path, idempotencyKey string, in, out interface{}, fallback string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+basePath+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey == "" {
		idempotencyKey = NewIdempotencyKey()
	}
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.Printf("[SessionClient] POST %s", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[SessionClient] ERROR: request failed: %v", err)
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fallback
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		log.Printf("[SessionClient] ERROR: %s returned %d: %s", path, resp.StatusCode, msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
