package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"formassist/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKClient calls Gemini through the Google Generative AI SDK. A client is
// created per call so the caller's context governs the connection.
type SDKClient struct {
	config *config.AIConfig
}

// NewSDKClient creates an SDK transport
func NewSDKClient(cfg *config.AIConfig) *SDKClient {
	return &SDKClient{config: cfg}
}

// Generate implements Generator
func (c *SDKClient) Generate(ctx context.Context, req Request) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.config.APIKey))
	if err != nil {
		return "", fmt.Errorf("genai client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(req.Model)
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, sdkParts(req)...)
	if err != nil {
		return "", sdkError(err)
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				parts = append(parts, string(t))
			}
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(parts, ""), nil
}

func sdkParts(req Request) []genai.Part {
	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}
	return parts
}

// sdkError surfaces API failures as HTTPError so both transports report
// provider errors the same way
func sdkError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("generate content: %w", err)
	}
	body := gerr.Body
	if body == "" {
		body = gerr.Message
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &HTTPError{StatusCode: gerr.Code, Body: body}
}
