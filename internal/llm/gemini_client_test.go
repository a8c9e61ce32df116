package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/csheth/edugenius/internal/catalog"
)

func TestGeminiClientAssist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "secret" {
			t.Fatalf("unexpected api key header %q", got)
		}
		var payload struct {
			SystemInstruction geminiContent   `json:"systemInstruction"`
			Contents          []geminiContent `json:"contents"`
			GenerationConfig  struct {
				Temperature float64 `json:"temperature"`
			} `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.GenerationConfig.Temperature != 0.6 {
			t.Fatalf("unexpected temperature %v", payload.GenerationConfig.Temperature)
		}
		if len(payload.SystemInstruction.Parts) != 1 || !strings.Contains(payload.SystemInstruction.Parts[0].Text, "Language: Hindi") {
			t.Fatalf("system instruction missing language: %+v", payload.SystemInstruction)
		}
		if len(payload.Contents) != 1 || payload.Contents[0].Role != "user" {
			t.Fatalf("unexpected contents: %+v", payload.Contents)
		}
		if !strings.Contains(payload.Contents[0].Parts[0].Text, "Reference material") {
			t.Fatalf("user turn missing material: %s", payload.Contents[0].Parts[0].Text)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Notes\n"},{"text":"* Point"}]}}]}`))
	}))
	defer server.Close()

	client := &geminiClient{apiKey: "secret", model: "gemini-test", base: server.URL, client: server.Client()}
	result, err := client.Assist(context.Background(), Request{
		Subject:  "Physics",
		Mode:     catalog.ModeNotes,
		Query:    "Laws of motion",
		Language: "Hindi",
		Material: "Newton's three laws",
	})
	if err != nil {
		t.Fatalf("assist failed: %v", err)
	}
	if result.Title != "Physics - Global Academy" {
		t.Fatalf("unexpected title %q", result.Title)
	}
	if result.Content != "## Notes\n* Point" {
		t.Fatalf("unexpected content %q", result.Content)
	}
}

func TestGeminiClientNoCandidatesFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := &geminiClient{apiKey: "k", model: "m", base: server.URL, client: server.Client()}
	result, err := client.Assist(context.Background(), Request{Subject: "Physics", Query: "q"})
	if err != nil {
		t.Fatalf("assist failed: %v", err)
	}
	if result.Content != FallbackContent {
		t.Fatalf("expected fallback, got %q", result.Content)
	}
}

func TestGeminiClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := &geminiClient{apiKey: "k", model: "m", base: server.URL, client: server.Client()}
	_, err := client.Assist(context.Background(), Request{Subject: "Physics", Query: "q"})
	var collab *CollaboratorError
	if !errors.As(err, &collab) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if err.Error() != ConnectionErrorMessage {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
