package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/edugenius/internal/catalog"
)

const (
	defaultGeminiModel = "gemini-3-flash-preview"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaModel = "ministral-3:latest"

	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	defaultOpenAIEndpoint = "https://api.openai.com/v1"
	defaultOllamaEndpoint = "http://localhost:11434"

	// Reference material is appended to the user turn; keep it well below the
	// smallest provider window.
	maxMaterialChars = 60_000
	temperature      = 0.6
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Provider names a supported hosted or local model API.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// Config describes how to build an LLM client. Empty fields are filled from
// the environment.
type Config struct {
	Provider   Provider
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Request is one learner query with its selections.
type Request struct {
	Subject  string         `json:"subject"`
	Mode     catalog.ModeID `json:"mode"`
	Query    string         `json:"query"`
	Language string         `json:"language"`
	// Material is optional reference text attached by the learner.
	Material string `json:"-"`
}

// Response is the assistant's answer.
type Response struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	References []string `json:"references,omitempty"`
}

// Client sends a request to the assistant model and returns its answer.
type Client interface {
	Assist(ctx context.Context, req Request) (Response, error)
	Name() string
}

// NewFromEnv inspects the config and environment variables to build a client.
// Without an explicit provider, a Gemini key wins over an OpenAI key, and a
// local Ollama is the fallback.
func NewFromEnv(cfg Config) (Client, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case firstEnv("GEMINI_API_KEY", "API_KEY") != "":
			provider = ProviderGemini
		case os.Getenv("OPENAI_API_KEY") != "":
			provider = ProviderOpenAI
		default:
			provider = ProviderOllama
		}
	}
	httpClient := pickHTTPClient(cfg.HTTPClient)

	switch provider {
	case ProviderGemini:
		key := pick(cfg.APIKey, firstEnv("GEMINI_API_KEY", "API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
		return &geminiClient{
			apiKey: key,
			model:  pick(cfg.Model, os.Getenv("GEMINI_MODEL"), defaultGeminiModel),
			base:   strings.TrimRight(pick(cfg.Endpoint, os.Getenv("GEMINI_ENDPOINT"), defaultGeminiEndpoint), "/"),
			client: httpClient,
		}, nil
	case ProviderOpenAI:
		key := pick(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return &openAIClient{
			apiKey: key,
			model:  pick(cfg.Model, os.Getenv("OPENAI_MODEL"), defaultOpenAIModel),
			base:   strings.TrimRight(pick(cfg.Endpoint, os.Getenv("OPENAI_BASE_URL"), defaultOpenAIEndpoint), "/"),
			client: httpClient,
		}, nil
	case ProviderOllama:
		return &ollamaClient{
			host:   strings.TrimRight(pick(cfg.Endpoint, os.Getenv("OLLAMA_HOST"), defaultOllamaEndpoint), "/"),
			model:  pick(cfg.Model, os.Getenv("OLLAMA_MODEL"), defaultOllamaModel),
			client: httpClient,
		}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need more than a minute; callers bound requests with their context.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}

func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
