package titlegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"jan-server/services/conversation-api/internal/utils/platformerrors"
)

func TestSuggestTitle(t *testing.T) {
	var captured openai.ChatCompletionRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		response := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  Weather Small Talk  "}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", "gpt-4o-mini", 5*time.Second, zerolog.Nop())

	title, err := client.SuggestTitle(context.Background(), []string{"what's the weather", "and tomorrow?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Weather Small Talk" {
		t.Errorf("expected trimmed title, got %q", title)
	}

	if authHeader != "Bearer secret-key" {
		t.Errorf("expected bearer auth, got %q", authHeader)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", captured.Model)
	}
	if captured.MaxTokens != titleMaxTokens {
		t.Errorf("expected max tokens %d, got %d", titleMaxTokens, captured.MaxTokens)
	}
	if captured.Temperature != titleTemperature {
		t.Errorf("expected temperature %v, got %v", titleTemperature, captured.Temperature)
	}

	if len(captured.Messages) != 3 {
		t.Fatalf("expected system prompt plus 2 user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("expected leading system message, got %s", captured.Messages[0].Role)
	}
	if captured.Messages[1].Role != openai.ChatMessageRoleUser || captured.Messages[1].Content != "what's the weather" {
		t.Errorf("unexpected first user message: %+v", captured.Messages[1])
	}
	if captured.Messages[2].Role != openai.ChatMessageRoleUser || captured.Messages[2].Content != "and tomorrow?" {
		t.Errorf("unexpected second user message: %+v", captured.Messages[2])
	}
}

func TestSuggestTitleNoAuthHeaderWithoutKey(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Local Chat"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "local-model", 5*time.Second, zerolog.Nop())
	if _, err := client.SuggestTitle(context.Background(), []string{"hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth {
		t.Error("no Authorization header should be sent without an API key")
	}
}

func TestSuggestTitleUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "gpt-4o-mini", 5*time.Second, zerolog.Nop())

	_, err := client.SuggestTitle(context.Background(), []string{"hello"})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}

func TestSuggestTitleEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "gpt-4o-mini", 5*time.Second, zerolog.Nop())

	_, err := client.SuggestTitle(context.Background(), []string{"hello"})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}
