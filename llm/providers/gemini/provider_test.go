package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/cameron5906/conclave/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Name(t *testing.T) {
	p := New(Config{APIKey: "test-key"})
	assert.Equal(t, "gemini", p.Name())
}

func TestProvider_DefaultsApplied(t *testing.T) {
	p := New(Config{APIKey: "test-key"})
	assert.Equal(t, defaultBaseURL, p.cfg.BaseURL)
	assert.Equal(t, defaultModel, p.cfg.Model)
}

func TestEndpoint_IncludesModelAndKey(t *testing.T) {
	p := New(Config{APIKey: "shh", BaseURL: "https://example.test"})
	got := p.endpoint("gemini-1.5-pro", "generateContent")
	assert.Equal(t, "https://example.test/v1beta/models/gemini-1.5-pro:generateContent?key=shh", got)
}

func TestConvertMessages_SeparatesSystemInstruction(t *testing.T) {
	system, contents := convertMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "be terse"},
		{Role: llm.RoleUser, Content: "hello"},
	})
	require.NotNil(t, system)
	assert.Equal(t, "be terse", system.Parts[0].Text)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
}

func TestComplete_ParsesCandidateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content:      geminiContent{Parts: []geminiPart{{Text: "hello there"}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: &geminiUsageMetadata{PromptTokenCount: 3, CandidatesTokenCount: 2, TotalTokenCount: 5},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := New(Config{APIKey: "test-key", BaseURL: server.URL})
	resp, err := p.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestComplete_MapsUnauthorizedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(geminiErrorResponse{Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		}{Code: 401, Message: "bad key", Status: "UNAUTHENTICATED"}})
	}))
	defer server.Close()

	p := New(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, llm.CompletionOptions{})
	require.Error(t, err)

	var lerr *llm.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, llm.ErrUnauthorized, lerr.Code)
}

func TestProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	p := New(Config{APIKey: apiKey})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := p.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Say 'test' only"},
	}, llm.CompletionOptions{MaxTokens: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}
