package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okempf/jobscout/internal/model"
)

func TestOpenRouter_Complete(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "sk-test", srv.Client())
	got, err := p.Complete(context.Background(), Request{
		Prompt:      "say hello",
		Model:       "anthropic/claude-3-haiku",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("response = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if gotBody.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want default", gotBody.MaxTokens)
	}
}

func TestOpenRouter_HTTPErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "sk-test", srv.Client())
	_, err := p.Complete(context.Background(), Request{Prompt: "x", Model: "m"})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
}

func TestOpenRouter_APIErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"invalid model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "sk-test", srv.Client())
	if _, err := p.Complete(context.Background(), Request{Prompt: "x", Model: "bad"}); err == nil {
		t.Fatal("expected error from error body")
	}
}

func TestOpenRouter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "sk-test", srv.Client())
	if _, err := p.Complete(context.Background(), Request{Prompt: "x", Model: "m"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
