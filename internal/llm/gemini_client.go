package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type geminiClient struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

func (c *geminiClient) Name() string {
	return fmt.Sprintf("Gemini (%s)", c.model)
}

func (c *geminiClient) Assist(ctx context.Context, req Request) (Response, error) {
	if err := validateRequest(req); err != nil {
		return Response{}, err
	}
	text, err := c.generate(ctx, BuildSystemInstruction(req), BuildUserPrompt(req))
	if err != nil {
		return Response{}, wrapFailure(ProviderGemini, err)
	}
	return buildResponse(req, text), nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) generate(ctx context.Context, system, prompt string) (string, error) {
	payload := map[string]any{
		"systemInstruction": geminiContent{Parts: []geminiPart{{Text: system}}},
		"contents":          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		"generationConfig":  map[string]any{"temperature": temperature},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.base, url.PathEscape(c.model))
	headers := map[string]string{"x-goog-api-key": c.apiKey}
	var parsed geminiResponse
	if err := postJSON(ctx, c.client, ProviderGemini, endpoint, headers, payload, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}
	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}
