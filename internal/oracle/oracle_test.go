package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestOpenAI_Ask(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer k" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("  Expanda para o norte.  ")))
	}))
	defer srv.Close()

	o, err := NewOpenAI(Config{BaseURL: srv.URL + "/v1", APIKey: "k", Model: "test-model"})
	if err != nil {
		t.Fatal(err)
	}
	answer, err := o.Ask(context.Background(), "Qual o próximo passo?", Stats{Members: 3, Balance: 1250000, Warnings: 1})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer != "Expanda para o norte." {
		t.Errorf("unexpected answer %q", answer)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "$ 1.250.000") {
		t.Errorf("system message missing stats: %q", got.Messages[0].Content)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "Qual o próximo passo?" {
		t.Errorf("unexpected user message %+v", got.Messages[1])
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	o, _ := NewOpenAI(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	if _, err := o.Ask(context.Background(), "x", Stats{}); err == nil {
		t.Error("expected error on 500")
	}
}

func TestOpenAI_EmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("")))
	}))
	defer srv.Close()

	o, _ := NewOpenAI(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	if _, err := o.Ask(context.Background(), "x", Stats{}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNew_Disabled(t *testing.T) {
	o, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Ask(context.Background(), "x", Stats{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(Config{BaseURL: "http://localhost"}); err == nil {
		t.Error("expected error when model is missing")
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{
		0:       "$ 0",
		999:     "$ 999",
		1250000: "$ 1.250.000",
		-4500:   "$ -4.500",
	}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%d) = %q, want %q", in, got, want)
		}
	}
}
