package llm

import (
	"context"
	"fmt"
	"net/http"
)

type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) Assist(ctx context.Context, req Request) (Response, error) {
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}
	text, err := c.generate(ctx, BuildSystemInstruction(req), BuildUserPrompt(req))
	if err != nil {
		return Response{}, wrapFailure(ProviderOllama, err)
	}
	return buildResponse(req, text), nil
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *ollamaClient) generate(ctx context.Context, system, prompt string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:   c.model,
		System:  system,
		Prompt:  prompt,
		Options: map[string]any{"temperature": temperature},
	}
	var parsed ollamaGenerateResponse
	if err := postJSON(ctx, c.client, ProviderOllama, c.host+"/api/generate", nil, payload, &parsed); err != nil {
		return "", err
	}
	return parsed.Response, nil
}
