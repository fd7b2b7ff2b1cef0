package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"scene-prompt-studio/internal/prompt"
)

type SDKOptions struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// SDKClient talks to the same endpoint through google.golang.org/genai.
type SDKClient struct {
	models *genai.Models
	logger *slog.Logger
}

func NewSDK(ctx context.Context, opts SDKOptions) (*SDKClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimSpace(opts.BaseURL),
			APIVersion: strings.TrimSpace(opts.APIVersion),
		},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &SDKClient{
		models: client.Models,
		logger: loggerOrDiscard(opts.Logger),
	}, nil
}

func (c *SDKClient) GenerateText(ctx context.Context, model string, parts []prompt.Part) (string, error) {
	genaiParts, err := toGenaiParts(parts)
	if err != nil {
		return "", err
	}

	c.logger.Debug("genai request", "model", model, "parts", len(genaiParts))

	resp, err := c.models.GenerateContent(ctx, model, []*genai.Content{
		{Role: "user", Parts: genaiParts},
	}, nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}

func toGenaiParts(parts []prompt.Part) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case prompt.TextPart:
			out = append(out, &genai.Part{Text: v.Text})
		case prompt.BinaryPart:
			data, err := base64.StdEncoding.DecodeString(v.Data)
			if err != nil {
				return nil, fmt.Errorf("decode part %d: %w", i, err)
			}
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: v.MimeType, Data: data}})
		}
	}
	return out, nil
}
