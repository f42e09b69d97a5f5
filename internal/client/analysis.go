package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// AnalysisClient submits a video file to the analysis service.
type AnalysisClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAnalysisClient constructs an analysis client. Analysis of a full video
// can take a while, so the timeout is generous.
func NewAnalysisClient(baseURL string) *AnalysisClient {
	return &AnalysisClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// AnalysisResult is what the analysis service produced for one video.
// Label and Name are suggestions and may be empty.
type AnalysisResult struct {
	VideoID string `json:"video_id"`
	Result  string `json:"result"`
	Label   string `json:"label"`
	Name    string `json:"name"`
}

// Analyze uploads the video as multipart form data and blocks until the
// service responds. A single attempt is made; retrying is the caller's call.
func (c *AnalysisClient) Analyze(ctx context.Context, file io.Reader, filename, label, name string) (*AnalysisResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read video file: %w", err)
	}
	if label != "" {
		if err := writer.WriteField("label", label); err != nil {
			return nil, fmt.Errorf("failed to write label field: %w", err)
		}
	}
	if name != "" {
		if err := writer.WriteField("name", name); err != nil {
			return nil, fmt.Errorf("failed to write name field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &AnalysisError{Status: resp.StatusCode, Message: decodeErrorMessage(resp)}
	}

	var result AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &result, nil
}
