package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestStructureSingleRequest(t *testing.T) {
	var calls atomic.Int32
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"\n {\"Name\":\"Jane Doe\",\"Birthdate\":\"1990-01-01\"} \n"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, nil)
	res, err := c.Structure(context.Background(), "Patient: Jane Doe, DOB 1990-01-01")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, `{"Name":"Jane Doe","Birthdate":"1990-01-01"}`, res.Raw)
	assert.True(t, res.Inspection.ValidJSON)
	assert.Equal(t, "gpt-4", got.Model)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "Patient: Jane Doe, DOB 1990-01-01")
}

func TestStructureNonJSONReplyIsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"I could not find any data."}}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Structure(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "I could not find any data.", res.Raw)
	assert.False(t, res.Inspection.ValidJSON)
}

func TestStructureFailuresAreRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`},
		{"garbage", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Structure(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrRemoteService)
			assert.Equal(t, int32(1), calls.Load(), "no retries")
		})
	}
}
