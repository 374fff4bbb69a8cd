// ABOUTME: Tests for the OpenAI client against a local fake API server
// ABOUTME: Covers embeddings, tool-call completions, error classification, and timeouts
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tweak func(*ClientConfig)) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	cfg.MaxRetries = 0
	cfg.RetryDelay = time.Millisecond
	cfg.RequestsPerSecond = 0
	if tweak != nil {
		tweak(cfg)
	}

	client, err := NewOpenAIClientWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig() error = %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := &config.Config{
		OpenAIKey:         "k",
		OpenAIBaseURL:     "http://example.test/v1",
		ChatModel:         "gpt-4o",
		EmbeddingModel:    "text-embedding-3-large",
		Timeout:           5 * time.Second,
		MaxRetries:        4,
		RetryDelay:        3 * time.Second,
		RequestsPerSecond: 2,
	}

	cc := ConfigFrom(cfg)
	if cc.APIKey != "k" || cc.BaseURL != "http://example.test/v1" || cc.ChatModel != "gpt-4o" {
		t.Errorf("ConfigFrom() = %+v", cc)
	}
	if string(cc.EmbeddingModel) != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %s", cc.EmbeddingModel)
	}
	if cc.Timeout != 5*time.Second || cc.MaxRetries != 4 || cc.RetryDelay != 3*time.Second || cc.RequestsPerSecond != 2 {
		t.Errorf("ConfigFrom() timing fields = %+v", cc)
	}
}

func TestGenerateEmbedding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,-0.25,1]}],"model":"text-embedding-3-small"}`)
	}, nil)

	vec, err := client.GenerateEmbedding(context.Background(), "tomato soup")
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	want := []float64{0.5, -0.25, 1}
	if len(vec) != len(want) {
		t.Fatalf("len = %d, want %d", len(vec), len(want))
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestGenerateEmbedding_QuotaExceeded(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusTooManyRequests, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })

	_, err := client.GenerateEmbedding(context.Background(), "x")
	if !errors.Is(err, ErrEmbeddingQuotaExceeded) {
		t.Fatalf("error = %v, want ErrEmbeddingQuotaExceeded", err)
	}
	if !IsQuotaExceeded(err) {
		t.Error("IsQuotaExceeded() = false")
	}
	if calls.Load() != 1 {
		t.Errorf("quota errors should not be retried, got %d calls", calls.Load())
	}
}

func TestGenerateEmbedding_ServerErrorRetriesThenUnavailable(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 2 })

	_, err := client.GenerateEmbedding(context.Background(), "x")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
	if !IsUnavailable(err) {
		t.Error("IsUnavailable() = false")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestComplete_ToolCalls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			Messages []struct {
				Role       string `json:"role"`
				ToolCallID string `json:"tool_call_id"`
			} `json:"messages"`
			Tools []struct {
				Type     string `json:"type"`
				Function struct {
					Name string `json:"name"`
				} `json:"function"`
			} `json:"tools"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body.Tools) != 1 || body.Tools[0].Function.Name != "search_recipes" {
			t.Errorf("tools = %+v", body.Tools)
		}
		if len(body.Messages) != 4 || body.Messages[3].Role != "tool" || body.Messages[3].ToolCallID != "call_0" {
			t.Errorf("messages = %+v", body.Messages)
		}

		writeJSON(w, http.StatusOK, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"search_recipes","arguments":"{\"query\":\"soup\"}"}}]}}]}`)
	}, nil)

	messages := []models.Message{
		models.SystemMessage("be helpful"),
		models.UserMessage("soup please"),
		models.AssistantMessage("", models.ToolCall{ID: "call_0", Name: "search_recipes", Arguments: `{"query":"soup"}`}),
		models.ToolMessage("call_0", `{"status":"success","count":0,"recipes":[]}`),
	}
	tools := []models.ToolDefinition{{
		Name:        "search_recipes",
		Description: "search",
		Parameters:  map[string]any{"type": "object"},
	}}

	reply, err := client.Complete(context.Background(), messages, tools)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply.Role != models.RoleAssistant {
		t.Errorf("Role = %s, want assistant", reply.Role)
	}
	if reply.Content != "" {
		t.Errorf("Content = %q, want empty", reply.Content)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %d, want 1", len(reply.ToolCalls))
	}
	tc := reply.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "search_recipes" || tc.Arguments != `{"query":"soup"}` {
		t.Errorf("ToolCall = %+v", tc)
	}
}

func TestComplete_FinalAnswer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"c2","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Try the lentil soup."}}]}`)
	}, nil)

	reply, err := client.Complete(context.Background(), []models.Message{models.UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply.Content != "Try the lentil soup." || len(reply.ToolCalls) != 0 {
		t.Errorf("reply = %+v", reply)
	}
}

func TestComplete_TimeoutIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(cfg *ClientConfig) { cfg.Timeout = 50 * time.Millisecond })

	start := time.Now()
	_, err := client.Complete(context.Background(), []models.Message{models.UserMessage("hi")}, nil)
	if !errors.Is(err, ErrCompletionUnavailable) {
		t.Fatalf("error = %v, want ErrCompletionUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestComplete_QuotaExceeded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	}, nil)

	_, err := client.Complete(context.Background(), []models.Message{models.UserMessage("hi")}, nil)
	if !errors.Is(err, ErrCompletionQuotaExceeded) {
		t.Fatalf("error = %v, want ErrCompletionQuotaExceeded", err)
	}
}

func TestComplete_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices":[]}`)
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 5 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, []models.Message{models.UserMessage("hi")}, nil)
	if !errors.Is(err, ErrCompletionUnavailable) {
		t.Fatalf("error = %v, want ErrCompletionUnavailable", err)
	}
}
