// internal/api/errors.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// uploadFallback is shown when the upload endpoint gives no usable message
const uploadFallback = "Failed to upload file."

// RemoteError is a non-2xx response from the processing API
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// NetworkError is a transport failure: offline, DNS, refused, timed out
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Timeout() {
		return "Request timed out. Please try again."
	}
	return "Network error. Please check your connection and try again."
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline rather than a connection problem
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// UploadError is a failed file upload. Err is set when the failure was in
// the transport rather than a response.
type UploadError struct {
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// errorBody is the shape the API uses for failures. Either field may be set.
type errorBody struct {
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// detailString flattens FastAPI-style detail values, which may be a string or
// a list of validation objects carrying "msg"
func detailString(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case []any:
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}
	return ""
}

// statusMessage picks the human-readable message from a failed response,
// preferring message over detail, else "HTTP <status>"
func statusMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if d := detailString(eb.Detail); d != "" {
			return d
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// uploadMessage mirrors statusMessage for uploads, preferring detail
func uploadMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if d := detailString(eb.Detail); d != "" {
			return d
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return uploadFallback
}
