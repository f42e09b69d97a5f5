package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ConversationClient asks questions scoped to a single footage. Each call is
// stateless from the client's perspective: thread continuity is maintained by
// the session layer appending turns locally.
type ConversationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewConversationClient constructs a conversation client.
func NewConversationClient(baseURL string) *ConversationClient {
	return &ConversationClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type conversationRequest struct {
	VideoID   string `json:"video_id"`
	UserInput string `json:"user_input"`
}

type conversationResponse struct {
	Response string `json:"response"`
}

// Ask submits a question about footageID and returns the assistant's answer.
func (c *ConversationClient) Ask(ctx context.Context, footageID, question string) (string, error) {
	body, err := json.Marshal(conversationRequest{VideoID: footageID, UserInput: question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/conversation", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", &ConversationError{FootageID: footageID, Message: decodeErrorMessage(resp)}
	case resp.StatusCode >= 400:
		return "", &ServerError{Status: resp.StatusCode, Message: decodeErrorMessage(resp)}
	}

	var out conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode conversation response: %w", err)
	}
	return out.Response, nil
}
