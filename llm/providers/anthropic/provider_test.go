package anthropic

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
	assert.Equal(t, "anthropic", p.Name())
}

func TestProvider_DefaultModel(t *testing.T) {
	p := New(Config{APIKey: "test-key"})
	assert.Equal(t, defaultModel, p.resolveModel(llm.CompletionOptions{}))
}

func TestProvider_ModelOverride(t *testing.T) {
	p := New(Config{APIKey: "test-key", Model: "claude-3-opus-20240229"})
	assert.Equal(t, "claude-3-haiku-20240307", p.resolveModel(llm.CompletionOptions{Model: "claude-3-haiku-20240307"}))
}

func TestConvertMessages_SeparatesSystemPrompt(t *testing.T) {
	system, msgs := convertMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "be terse"},
		{Role: llm.RoleUser, Content: "hello"},
	})
	assert.Equal(t, "be terse", system)
	require.Len(t, msgs, 1)
}

func TestProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		t.Skip("ANTHROPIC_API_KEY not set, skipping integration test")
	}

	p := New(Config{APIKey: apiKey, Model: "claude-3-5-haiku-latest"})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := p.Complete(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Say 'test' only"},
	}, llm.CompletionOptions{MaxTokens: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}
