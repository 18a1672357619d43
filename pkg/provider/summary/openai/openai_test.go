package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voicebrief/pkg/provider/summary"
	"voicebrief/pkg/provider/summary/openai"
)

// chatRequest mirrors the fields of a chat completion request the tests care
// about.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newMockServer answers the chat completions endpoint with a single choice
// containing responseText and records each decoded request into *reqs. When
// noChoices is set the response carries an empty choices array.
func newMockServer(t *testing.T, responseText string, noChoices bool, reqs *[]chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if reqs != nil {
			var req chatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			*reqs = append(*reqs, req)
		}
		w.Header().Set("Content-Type", "application/json")
		if noChoices {
			_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
			return
		}
		resp := map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": responseText,
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_EmptyAPIKey_ReturnsError(t *testing.T) {
	if _, err := openai.New("", "gpt-3.5-turbo"); err == nil {
		t.Fatal("expected error for empty apiKey, got nil")
	}
}

func TestSummarize_ReturnsFirstChoice(t *testing.T) {
	const wantSummary = "Greeting."
	var reqs []chatRequest
	srv := newMockServer(t, wantSummary, false, &reqs)

	p, err := openai.New("sk-test", "", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := p.Summarize(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Summarize: unexpected error: %v", err)
	}
	if got != wantSummary {
		t.Errorf("Summarize: want %q, got %q", wantSummary, got)
	}
}

func TestSummarize_RequestShape(t *testing.T) {
	var reqs []chatRequest
	srv := newMockServer(t, "ok", false, &reqs)

	p, _ := openai.New("sk-test", "", openai.WithBaseURL(srv.URL))
	if _, err := p.Summarize(context.Background(), "the transcript"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if len(reqs) != 1 {
		t.Fatalf("completion calls: want 1, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Model != "gpt-3.5-turbo" {
		t.Errorf("model: want gpt-3.5-turbo, got %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages: want 2, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != summary.SystemPrompt {
		t.Errorf("system message: got %q / %q", req.Messages[0].Role, req.Messages[0].Content)
	}
	if req.Messages[1].Role != "user" {
		t.Errorf("user message role: got %q", req.Messages[1].Role)
	}
	if want := summary.UserPrefix + "the transcript"; req.Messages[1].Content != want {
		t.Errorf("user message content: want %q, got %q", want, req.Messages[1].Content)
	}
}

func TestSummarize_CustomModel(t *testing.T) {
	var reqs []chatRequest
	srv := newMockServer(t, "ok", false, &reqs)

	p, _ := openai.New("sk-test", "gpt-4o-mini", openai.WithBaseURL(srv.URL))
	if _, err := p.Summarize(context.Background(), "x"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if reqs[0].Model != "gpt-4o-mini" {
		t.Errorf("model: want gpt-4o-mini, got %q", reqs[0].Model)
	}
}

func TestSummarize_NoChoices_DegradesToEmpty(t *testing.T) {
	srv := newMockServer(t, "", true, nil)

	p, _ := openai.New("sk-test", "", openai.WithBaseURL(srv.URL))
	got, err := p.Summarize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Summarize: unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("want empty summary for choice-less response, got %q", got)
	}
}

func TestSummarize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"context length exceeded"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	p, _ := openai.New("sk-test", "", openai.WithBaseURL(srv.URL))
	if _, err := p.Summarize(context.Background(), "x"); err == nil {
		t.Fatal("expected error for API failure, got nil")
	}
}
