package client

import "fmt"

// NetworkError wraps a transport-level failure (connection refused, timeout,
// DNS). The request may never have reached the backend.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-success status from the footage store with a
// server-side cause.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// ValidationError means the store rejected the request payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AnalysisError is a non-success response from the analysis service.
type AnalysisError struct {
	Status  int
	Message string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%d): %s", e.Status, e.Message)
}

// ConversationError means the backend does not know the footage id the
// question was scoped to.
type ConversationError struct {
	FootageID string
	Message   string
}

func (e *ConversationError) Error() string {
	return fmt.Sprintf("conversation failed for %q: %s", e.FootageID, e.Message)
}
