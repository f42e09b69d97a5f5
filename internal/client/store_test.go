package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"footagelens/internal/models"
)

func TestStoreClient_ListFootages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/footages", r.URL.Path)

		var req struct {
			Email string `json:"email"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice@example.com", req.Email)

		json.NewEncoder(w).Encode(map[string]any{
			"footages": []models.Footage{
				{ID: "f1", Email: req.Email, Name: "Front Door", Label: "entrance", Analysis: "quiet morning"},
				{ID: "f2", Email: req.Email, Label: "lobby"},
			},
		})
	}))
	defer server.Close()

	c := NewStoreClient(server.URL)
	footages, err := c.ListFootages(context.Background(), "alice@example.com")

	require.NoError(t, err)
	require.Len(t, footages, 2)
	assert.Equal(t, "f1", footages[0].ID)
	assert.Equal(t, "entrance", footages[0].Label)
}

func TestStoreClient_ListFootages_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "db unavailable"})
	}))
	defer server.Close()

	c := NewStoreClient(server.URL)
	_, err := c.ListFootages(context.Background(), "alice@example.com")

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
	assert.Equal(t, "db unavailable", serverErr.Message)
}

func TestStoreClient_ListFootages_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := NewStoreClient(server.URL)
	_, err := c.ListFootages(context.Background(), "alice@example.com")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestStoreClient_CreateFootage(t *testing.T) {
	var got addFootageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/add-footage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	c := NewStoreClient(server.URL)
	err := c.CreateFootage(context.Background(), "alice@example.com", "Front Door", "entrance", "quiet morning")

	require.NoError(t, err)
	assert.Equal(t, addFootageRequest{
		Email:    "alice@example.com",
		Name:     "Front Door",
		Label:    "entrance",
		Analysis: "quiet morning",
	}, got)
}

func TestStoreClient_CreateFootage_Validation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "email is required"})
	}))
	defer server.Close()

	c := NewStoreClient(server.URL)
	err := c.CreateFootage(context.Background(), "", "", "", "analysis")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email is required", validationErr.Message)
}
