// Package gemini implements the generation.TextGenerator interface using
// Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/lexivid/lexivid/internal/config"
	"github.com/lexivid/lexivid/internal/generation"
)

// Generator calls the Gemini API with a per-request timeout and maps
// provider failures to the typed errors in the generation package.
type Generator struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenerator creates a Generator from the LLM configuration. A missing
// API key or model name is a configuration error, fatal at startup.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		logger:  logger.With(slog.String("component", "gemini_generator")),
		client:  client,
		model:   cfg.ModelName,
		timeout: timeout,
	}, nil
}

// Ensure Generator implements generation.TextGenerator
var _ generation.TextGenerator = (*Generator)(nil)

// GenerateText implements generation.TextGenerator. The request is bounded
// by the configured timeout; hitting it aborts the in-flight call and
// surfaces generation.ErrTimeout.
func (g *Generator) GenerateText(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("%w: empty prompt", generation.ErrInvalidResponse)
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if temperature > 0 {
		genCfg.Temperature = genai.Ptr(temperature)
	}

	resp, err := g.client.Models.GenerateContent(reqCtx, g.model, genai.Text(userPrompt), genCfg)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			g.logger.Warn("generation request timed out",
				"model", g.model,
				"timeout", g.timeout)
			return "", fmt.Errorf("%w: after %s", generation.ErrTimeout, g.timeout)
		}
		g.logger.Error("generation request failed",
			"model", g.model,
			"error", err)
		return "", fmt.Errorf("%w: %v", generation.ErrRequestFailed, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
	}
	return text, nil
}
