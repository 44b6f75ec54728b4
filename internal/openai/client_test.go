package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Easy chicken soup: boil chicken, add veggies."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Opts{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", Temperature: 0.7, FrequencyPenalty: 0.2})
	got, err := c.Complete(context.Background(), "you are warm", "recipe for soup", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Easy chicken soup: boil chicken, add veggies." {
		t.Errorf("Complete = %q", got)
	}

	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v, want system+user turns", gotReq.Messages)
	}
	if gotReq.MaxTokens != 150 {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
	if gotReq.Temperature != 0.7 || gotReq.FrequencyPenalty != 0.2 {
		t.Errorf("sampling profile = %v/%v", gotReq.Temperature, gotReq.FrequencyPenalty)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Opts{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), "s", "u", 0); err == nil {
		t.Error("expected error on empty choices")
	}
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Opts{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u", 0)
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestComplete_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Opts{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Complete(ctx, "s", "u", 0); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestModerate(t *testing.T) {
	tests := []struct {
		name    string
		flagged bool
	}{
		{"safe", false},
		{"flagged", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/moderations" {
					t.Errorf("path = %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"results": []map[string]bool{{"flagged": tt.flagged}},
				})
			}))
			defer srv.Close()

			c := NewClient(Opts{APIKey: "k", BaseURL: srv.URL})
			got, err := c.Moderate(context.Background(), "some text")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.flagged {
				t.Errorf("Moderate = %v, want %v", got, tt.flagged)
			}
		})
	}
}

func TestModerate_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Opts{APIKey: "k", BaseURL: srv.URL})
	if _, err := c.Moderate(context.Background(), "text"); err == nil {
		t.Error("expected error on empty results")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Opts{APIKey: "k"})
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.model != defaultModel {
		t.Errorf("model = %q", c.model)
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
}
