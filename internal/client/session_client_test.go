package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UniqBrio/UniqBrio-sub014/internal/ledger"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

func TestSessionClient_Reschedule(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, basePath+"/session-reschedules", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ledger.Result{
			ModifiedOriginal: &model.ScheduleSession{ID: "s1", Status: model.SessionCancelled},
			NewSession:       &model.ScheduleSession{ID: "s1-rescheduled-1", ParentSessionID: "s1"},
			Modification:     model.ModificationEntry{ID: "mod_1_abc", Type: model.ModificationRescheduled},
		})
	}))
	defer srv.Close()

	c := NewSessionClient(srv.URL+"/", "tok")
	res, err := c.Reschedule(context.Background(), "", &model.RescheduleRequest{
		SessionID:     "s1",
		NewDate:       model.Date{Time: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)},
		NewStartTime:  "14:00",
		NewEndTime:    "15:00",
		Reason:        "Holiday",
		RescheduledBy: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1-rescheduled-1", res.NewSession.ID)
	assert.Equal(t, "mod_1_abc", res.Modification.ID)

	for _, key := range []string{"sessionId", "newDate", "newStartTime", "newEndTime", "reason", "rescheduledBy"} {
		assert.Contains(t, gotBody, key)
	}
}

func TestSessionClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		call    func(c *SessionClient) error
		wantMsg string
	}{
		{
			name:   "server message is surfaced",
			status: http.StatusConflict,
			body:   `{"error":"instructor has 1 conflicting session(s) in that slot"}`,
			call: func(c *SessionClient) error {
				_, err := c.Reassign(context.Background(), "", &model.ReassignmentRequest{SessionID: "s1"})
				return err
			},
			wantMsg: "instructor has 1 conflicting session(s) in that slot",
		},
		{
			name:   "fallback when body has no error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			call: func(c *SessionClient) error {
				_, err := c.Cancel(context.Background(), "", &model.CancellationRequest{SessionID: "s1"})
				return err
			},
			wantMsg: "failed to cancel session",
		},
		{
			name:   "reschedule fallback",
			status: http.StatusBadGateway,
			body:   `{}`,
			call: func(c *SessionClient) error {
				_, err := c.Reschedule(context.Background(), "", &model.RescheduleRequest{SessionID: "s1"})
				return err
			},
			wantMsg: "failed to reschedule session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := tt.call(NewSessionClient(srv.URL, ""))
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, 1, calls, "client must not retry")
		})
	}
}

func TestSessionClient_RetryWithSameKeyReplays(t *testing.T) {
	var keys []string
	stored := map[string][]byte{}
	applied := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		keys = append(keys, key)
		if body, ok := stored[key]; ok {
			w.WriteHeader(http.StatusCreated)
			w.Write(body)
			return
		}
		applied++
		body, _ := json.Marshal(ledger.CancelResult{
			CancelledSession: &model.ScheduleSession{ID: "s1", Status: model.SessionCancelled},
			Modification:     model.ModificationEntry{ID: "mod_1_abc", Type: model.ModificationCancelled},
		})
		stored[key] = body
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	}))
	defer srv.Close()

	c := NewSessionClient(srv.URL, "")
	req := &model.CancellationRequest{SessionID: "s1", Reason: "Venue closed", CancelledBy: "admin"}
	key := NewIdempotencyKey()

	first, err := c.Cancel(context.Background(), key, req)
	require.NoError(t, err)
	second, err := c.Cancel(context.Background(), key, req)
	require.NoError(t, err)

	assert.Equal(t, []string{key, key}, keys)
	assert.Equal(t, 1, applied)
	assert.Equal(t, first.Modification.ID, second.Modification.ID)

	_, err = c.Cancel(context.Background(), "", req)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.NotEmpty(t, keys[2])
	assert.NotEqual(t, key, keys[2])
	assert.Equal(t, 2, applied)
}
