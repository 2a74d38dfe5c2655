package provider

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

	"github.com/roach88/samvada/internal/chat"
)

func TestBuildMessages(t *testing.T) {
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hello"},
		{Role: chat.RoleUser, Content: "bye"},
	}

	got := BuildMessages("be terse", turns)

	require.Len(t, got, 4)
	assert.Equal(t, Message{Role: "system", Content: "be terse"}, got[0])
	assert.Equal(t, Message{Role: "user", Content: "hi"}, got[1])
	assert.Equal(t, Message{Role: "assistant", Content: "hello"}, got[2])
	assert.Equal(t, Message{Role: "user", Content: "bye"}, got[3])
}

func TestClientComplete(t *testing.T) {
	var gotReq Request
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-x",
			"created": 1700000000,
			"choices": [{"message": {"role": "assistant", "content": "pong"}}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test", nil)
	resp, err := client.Complete(context.Background(), Request{
		Model:    "gpt-x",
		Messages: []Message{{Role: "user", Content: "ping"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-x", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)

	answer, err := resp.Answer()
	require.NoError(t, err)
	assert.Equal(t, "pong", answer)

	meta := resp.Metadata()
	assert.Equal(t, "chatcmpl-1", meta.ID)
	assert.Equal(t, "gpt-x", meta.Model)
	assert.Equal(t, int64(42), meta.TotalTokens)
	assert.True(t, meta.Created.Equal(time.Unix(1700000000, 0)))
}

func TestClientComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk-bad", nil).Complete(context.Background(), Request{Model: "gpt-x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad key")
}

func TestResponseAnswer_Empty(t *testing.T) {
	resp := &Response{}
	_, err := resp.Answer()
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestResponseMetadata_ZeroCreated(t *testing.T) {
	meta := (&Response{ID: "x"}).Metadata()
	assert.True(t, meta.Created.IsZero())
}
