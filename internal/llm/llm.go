// Package llm talks to the Gemini generateContent API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"formassist/internal/config"
)

// ErrEmptyResponse is returned when a response carries no text part
var ErrEmptyResponse = errors.New("empty response from Gemini")

// Attachment is inline file data sent with a prompt
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call
type Request struct {
	Model       string
	Prompt      string
	Attachments []Attachment
}

// Generator returns the text payload of a generation call. Responses are
// requested as JSON but callers must still treat the text as untrusted.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HTTPError is a non-2xx response from the generation endpoint
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Body)
}

// New picks the transport named by cfg.Transport
func New(cfg *config.AIConfig) Generator {
	if cfg.Transport == config.TransportSDK {
		return NewSDKClient(cfg)
	}
	return NewClient(cfg, nil)
}
