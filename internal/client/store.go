package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"footagelens/internal/models"
)

// StoreClient calls the footage store endpoints over HTTP.
type StoreClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewStoreClient constructs a footage store client.
func NewStoreClient(baseURL string) *StoreClient {
	return &StoreClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type listFootagesRequest struct {
	Email string `json:"email"`
}

type listFootagesResponse struct {
	Footages []models.Footage `json:"footages"`
}

type addFootageRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Analysis string `json:"analysis"`
}

// ListFootages returns every footage owned by email, in store order.
func (c *StoreClient) ListFootages(ctx context.Context, email string) ([]models.Footage, error) {
	body, err := json.Marshal(listFootagesRequest{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/footages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &ServerError{Status: resp.StatusCode, Message: decodeErrorMessage(resp)}
	}

	var out listFootagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode footage list: %w", err)
	}
	return out.Footages, nil
}

// CreateFootage persists a newly analyzed footage for email. The created row
// becomes visible to subsequent ListFootages calls; only the response status
// is inspected here, matching the add-footage wire contract.
func (c *StoreClient) CreateFootage(ctx context.Context, email, name, label, analysis string) error {
	body, err := json.Marshal(addFootageRequest{
		Email:    email,
		Name:     name,
		Label:    label,
		Analysis: analysis,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/add-footage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &ValidationError{Message: decodeErrorMessage(resp)}
	case resp.StatusCode >= 400:
		return &ServerError{Status: resp.StatusCode, Message: decodeErrorMessage(resp)}
	}
	return nil
}

// decodeErrorMessage pulls the {"error": ...} body the backend sends on
// failure, falling back to the HTTP status line.
func decodeErrorMessage(resp *http.Response) string {
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error == "" {
		return resp.Status
	}
	return errResp.Error
}
