// Package anthropic implements llm.Provider against Claude models via the
// official Anthropic Go SDK.
package anthropic

import (
	"context"
	"encoding/json"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cameron5906/conclave/llm"
)

const defaultModel = "claude-3-5-sonnet-latest"
const defaultMaxTokens = 4096

// Config holds the connection details for one Claude deployment.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider implements llm.Provider over the Anthropic Messages API.
type Provider struct {
	client anthropicsdk.Client
	model  string
}

// New constructs an anthropic Provider from cfg, defaulting Model when unset.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: anthropicsdk.NewClient(opts...), model: model}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) resolveModel(opts llm.CompletionOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.model
}

func convertMessages(messages []llm.Message) (system string, out []anthropicsdk.MessageParam) {
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			out = append(out, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		case llm.RoleAssistant:
			blocks := make([]anthropicsdk.ContentBlockParamUnion, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				blocks = append(blocks, anthropicsdk.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input interface{}
				_ = json.Unmarshal(tc.Arguments, &input)
				blocks = append(blocks, anthropicsdk.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			out = append(out, anthropicsdk.MessageParam{Role: anthropicsdk.MessageParamRoleAssistant, Content: blocks})
		case llm.RoleTool:
			out = append(out, anthropicsdk.NewUserMessage(anthropicsdk.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}
	return system, out
}

func convertTools(tools []llm.ToolDefinition) []anthropicsdk.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]anthropicsdk.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropicsdk.ToolInputSchemaParam
		_ = json.Unmarshal(t.Parameters, &schema)
		out = append(out, anthropicsdk.ToolUnionParam{
			OfTool: &anthropicsdk.ToolParam{
				Name:        t.Name,
				Description: anthropicsdk.String(t.Description),
				InputSchema: schema,
			},
		})
	}
	return out
}

func (p *Provider) buildParams(messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) anthropicsdk.MessageNewParams {
	system, msgs := convertMessages(messages)
	if opts.SystemPrompt != "" {
		system = opts.SystemPrompt
	}

	maxTokens := int64(defaultMaxTokens)
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.resolveModel(opts)),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: system}}
	}
	if opts.Temperature != nil {
		params.Temperature = anthropicsdk.Float(float64(*opts.Temperature))
	}
	if opts.TopP != nil {
		params.TopP = anthropicsdk.Float(float64(*opts.TopP))
	}
	if len(opts.StopSequences) > 0 {
		params.StopSequences = opts.StopSequences
	}
	if toolParams := convertTools(tools); toolParams != nil {
		params.Tools = toolParams
	}
	return params
}

func (p *Provider) Complete(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (*llm.Response, error) {
	return p.send(ctx, p.buildParams(messages, nil, opts))
}

func (p *Provider) CompleteWithTools(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) (*llm.Response, error) {
	return p.send(ctx, p.buildParams(messages, tools, opts))
}

func (p *Provider) send(ctx context.Context, params anthropicsdk.MessageNewParams) (*llm.Response, error) {
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err, p.Name())
	}

	out := &llm.Response{
		ModelID:      string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropicsdk.TextBlock:
			out.Content += variant.Text
		case anthropicsdk.ToolUseBlock:
			args, _ := json.Marshal(variant.Input)
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{ID: variant.ID, Name: variant.Name, Arguments: args})
		}
	}
	return out, nil
}

func (p *Provider) Stream(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (<-chan llm.StreamDelta, <-chan error) {
	deltaCh := make(chan llm.StreamDelta)
	errCh := make(chan error, 1)

	params := p.buildParams(messages, nil, opts)
	stream := p.client.Messages.NewStreaming(ctx, params)

	go func() {
		defer close(deltaCh)
		defer close(errCh)
		for stream.Next() {
			event := stream.Current()
			if delta, ok := event.AsAny().(anthropicsdk.ContentBlockDeltaEvent); ok {
				if textDelta, ok := delta.Delta.AsAny().(anthropicsdk.TextDelta); ok && textDelta.Text != "" {
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case deltaCh <- llm.StreamDelta{Content: textDelta.Text}:
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- mapError(err, p.Name())
			return
		}
		deltaCh <- llm.StreamDelta{Done: true}
	}()

	return deltaCh, errCh
}

func mapError(err error, provider string) error {
	var apiErr *anthropicsdk.Error
	if castErr, ok := err.(*anthropicsdk.Error); ok {
		apiErr = castErr
	}
	if apiErr == nil {
		return &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Retryable: true, Provider: provider}
	}

	code := llm.ErrUpstreamError
	retryable := apiErr.StatusCode >= 500
	switch apiErr.StatusCode {
	case 401:
		code = llm.ErrUnauthorized
	case 429:
		code = llm.ErrRateLimited
		retryable = true
	case 400:
		code = llm.ErrInvalidRequest
	}
	return &llm.Error{Code: code, Message: apiErr.Error(), HTTPStatus: apiErr.StatusCode, Retryable: retryable, Provider: provider}
}
