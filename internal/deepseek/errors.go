package deepseek

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("no API key found. Please set DEEPSEEK_API_KEY environment variable")

// TransportError wraps a network-level failure of the POST itself
// (DNS, refused connection, TLS, cancellation or timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the response body was not valid JSON.
type ParseError struct {
	StatusCode int
	Raw        []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse response (HTTP %d)", e.StatusCode)
}

// APIError is any JSON response that does not carry a usable first choice.
// Authentication failures, rate limits and malformed requests all land here.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("API returned an error (HTTP %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API returned an error (HTTP %d)", e.StatusCode)
}

// Message returns error.message from the body, if present.
func (e *APIError) Message() string {
	return gjson.GetBytes(e.Body, "error.message").String()
}

// Pretty returns the body indented by two spaces with key order preserved.
func (e *APIError) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(e.Body), "", "  "); err != nil {
		return string(e.Body)
	}
	return buf.String()
}
