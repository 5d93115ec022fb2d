// Package openai implements llm.Provider against GPT models via the
// official OpenAI Go SDK.
package openai

import (
	"context"
	"encoding/json"

	"github.com/cameron5906/conclave/llm"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = openaisdk.ChatModelGPT4o

// Config holds the connection details for one GPT deployment.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Provider implements llm.Provider over the OpenAI Chat Completions API.
type Provider struct {
	client openaisdk.Client
	model  string
}

// New constructs an openai Provider from cfg, defaulting Model when unset.
func New(cfg Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(defaultModel)
	}
	return &Provider{client: openaisdk.NewClient(opts...), model: model}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) resolveModel(opts llm.CompletionOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.model
}

func convertMessages(messages []llm.Message, systemPrompt string) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openaisdk.SystemMessage(systemPrompt))
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			if systemPrompt == "" {
				out = append(out, openaisdk.SystemMessage(m.Content))
			}
		case llm.RoleUser:
			out = append(out, openaisdk.UserMessage(m.Content))
		case llm.RoleAssistant:
			assistant := openaisdk.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openaisdk.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openaisdk.String(m.Content),
				}
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			out = append(out, openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case llm.RoleTool:
			out = append(out, openaisdk.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func convertTools(tools []llm.ToolDefinition) []openaisdk.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openaisdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		var schema map[string]interface{}
		_ = json.Unmarshal(t.Parameters, &schema)
		out = append(out, openaisdk.ChatCompletionToolParam{
			Function: openaisdk.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openaisdk.String(t.Description),
				Parameters:  openaisdk.FunctionParameters(schema),
			},
		})
	}
	return out
}

func (p *Provider) buildParams(messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) openaisdk.ChatCompletionNewParams {
	params := openaisdk.ChatCompletionNewParams{
		Model:    p.resolveModel(opts),
		Messages: convertMessages(messages, opts.SystemPrompt),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature != nil {
		params.Temperature = openaisdk.Float(float64(*opts.Temperature))
	}
	if opts.TopP != nil {
		params.TopP = openaisdk.Float(float64(*opts.TopP))
	}
	if opts.FrequencyPenalty != nil {
		params.FrequencyPenalty = openaisdk.Float(float64(*opts.FrequencyPenalty))
	}
	if opts.PresencePenalty != nil {
		params.PresencePenalty = openaisdk.Float(float64(*opts.PresencePenalty))
	}
	if len(opts.StopSequences) > 0 {
		params.Stop = openaisdk.ChatCompletionNewParamsStopUnion{OfStringArray: opts.StopSequences}
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

func (p *Provider) send(ctx context.Context, params openaisdk.ChatCompletionNewParams) (*llm.Response, error) {
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err, p.Name())
	}
	if len(resp.Choices) == 0 {
		return &llm.Response{ModelID: resp.Model}, nil
	}

	choice := resp.Choices[0]
	out := &llm.Response{
		Content:      choice.Message.Content,
		ModelID:      resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}

func (p *Provider) Stream(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (<-chan llm.StreamDelta, <-chan error) {
	deltaCh := make(chan llm.StreamDelta)
	errCh := make(chan error, 1)

	params := p.buildParams(messages, nil, opts)
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	go func() {
		defer close(deltaCh)
		defer close(errCh)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			content := chunk.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case deltaCh <- llm.StreamDelta{Content: content}:
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
	var apiErr *openaisdk.Error
	if castErr, ok := err.(*openaisdk.Error); ok {
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
