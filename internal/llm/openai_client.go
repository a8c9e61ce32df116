package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type openAIClient struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) Assist(ctx context.Context, req Request) (Response, error) {
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}
	text, err := c.chat(ctx, BuildSystemInstruction(req), BuildUserPrompt(req))
	if err != nil {
		return Response{}, wrapFailure(ProviderOpenAI, err)
	}
	return buildResponse(req, text), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) chat(ctx context.Context, system, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	var parsed chatResponse
	if err := postJSON(ctx, c.client, ProviderOpenAI, c.base+"/chat/completions", headers, payload, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
