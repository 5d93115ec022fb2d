package openai

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cameron5906/conclave/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Name(t *testing.T) {
	p := New(Config{APIKey: "test-key"})
	assert.Equal(t, "openai", p.Name())
}

func TestProvider_DefaultModel(t *testing.T) {
	p := New(Config{APIKey: "test-key"})
	assert.Equal(t, string(defaultModel), p.resolveModel(llm.CompletionOptions{}))
}

func TestProvider_ModelOverride(t *testing.T) {
	p := New(Config{APIKey: "test-key", Model: "gpt-4o"})
	assert.Equal(t, "gpt-4o-mini", p.resolveModel(llm.CompletionOptions{Model: "gpt-4o-mini"}))
}

func TestConvertMessages_SystemPromptOverridesSystemRole(t *testing.T) {
	msgs := convertMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "ignored"},
		{Role: llm.RoleUser, Content: "hello"},
	}, "be terse")
	require.Len(t, msgs, 2)
}

func TestProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	p := New(Config{APIKey: apiKey, Model: "gpt-4o-mini"})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := p.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Say 'test' only"},
	}, llm.CompletionOptions{MaxTokens: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}
