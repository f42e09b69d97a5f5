package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/conversation", r.URL.Path)

		var req struct {
			VideoID   string `json:"video_id"`
			UserInput string `json:"user_input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "v1", req.VideoID)
		assert.Equal(t, "Who was at the door?", req.UserInput)

		json.NewEncoder(w).Encode(map[string]string{"response": "A delivery courier."})
	}))
	defer server.Close()

	c := NewConversationClient(server.URL)
	answer, err := c.Ask(context.Background(), "v1", "Who was at the door?")

	require.NoError(t, err)
	assert.Equal(t, "A delivery courier.", answer)
}

func TestConversationClient_Ask_UnknownFootage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown video id"})
	}))
	defer server.Close()

	c := NewConversationClient(server.URL)
	_, err := c.Ask(context.Background(), "nope", "hello?")

	var convErr *ConversationError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "nope", convErr.FootageID)
}

func TestConversationClient_Ask_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "provider unavailable"})
	}))
	defer server.Close()

	c := NewConversationClient(server.URL)
	_, err := c.Ask(context.Background(), "v1", "hello?")

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
}

func TestConversationClient_Ask_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewConversationClient(server.URL)
	_, err := c.Ask(context.Background(), "v1", "hello?")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}
