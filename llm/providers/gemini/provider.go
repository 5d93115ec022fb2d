// Package gemini implements llm.Provider against the Google Generative
// Language API over plain net/http, since the retrieval pack carries no
// Gemini SDK for any vendor dependency to wire instead.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cameron5906/conclave/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"
const defaultModel = "gemini-1.5-pro"

// Config holds the connection details for one Gemini deployment.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider implements llm.Provider against the Gemini generateContent API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// New constructs a Gemini Provider, applying the documented defaults for
// BaseURL/Timeout/Model when left unset.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Provider{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

func (p *Provider) Name() string { return "gemini" }

type geminiPart struct {
	Text             string          `json:"text,omitempty"`
	FunctionCall     *geminiFuncCall `json:"functionCall,omitempty"`
	FunctionResponse *geminiFuncResp `json:"functionResponse,omitempty"`
}

type geminiFuncCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type geminiFuncResp struct {
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role"` // user or model
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func convertMessages(messages []llm.Message) (*geminiContent, []geminiContent) {
	var system *geminiContent
	var contents []geminiContent

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = &geminiContent{Role: "system", Parts: []geminiPart{{Text: m.Content}}}
		case llm.RoleTool:
			contents = append(contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{{
					FunctionResponse: &geminiFuncResp{Name: m.Name, Response: json.RawMessage(fmt.Sprintf(`{"result":%q}`, m.Content))},
				}},
			})
		case llm.RoleAssistant:
			content := geminiContent{Role: "model"}
			if m.Content != "" {
				content.Parts = append(content.Parts, geminiPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				content.Parts = append(content.Parts, geminiPart{FunctionCall: &geminiFuncCall{Name: tc.Name, Args: tc.Arguments}})
			}
			contents = append(contents, content)
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	return system, contents
}

func convertTools(tools []llm.ToolDefinition) []geminiTool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]geminiFunctionDecl, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, geminiFunctionDecl{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	return []geminiTool{{FunctionDeclarations: decls}}
}

func (p *Provider) buildRequest(messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) geminiRequest {
	system, contents := convertMessages(messages)
	if opts.SystemPrompt != "" {
		system = &geminiContent{Role: "system", Parts: []geminiPart{{Text: opts.SystemPrompt}}}
	}

	genCfg := &geminiGenerationConfig{
		Temperature:   opts.Temperature,
		TopP:          opts.TopP,
		StopSequences: opts.StopSequences,
	}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = opts.MaxTokens
	}

	return geminiRequest{
		Contents:          contents,
		SystemInstruction: system,
		Tools:             convertTools(tools),
		GenerationConfig:  genCfg,
	}
}

func (p *Provider) model(opts llm.CompletionOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return p.cfg.Model
}

func (p *Provider) endpoint(model, action string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:%s?key=%s", strings.TrimRight(p.cfg.BaseURL, "/"), model, action, p.cfg.APIKey)
}

func (p *Provider) Complete(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (*llm.Response, error) {
	return p.do(ctx, messages, nil, opts)
}

func (p *Provider) CompleteWithTools(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) (*llm.Response, error) {
	return p.do(ctx, messages, tools, opts)
}

func (p *Provider) do(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition, opts llm.CompletionOptions) (*llm.Response, error) {
	model := p.model(opts)
	body := p.buildRequest(messages, tools, opts)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &llm.Error{Code: llm.ErrInvalidRequest, Message: err.Error(), Provider: p.Name()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(model, "generateContent"), bytes.NewReader(payload))
	if err != nil {
		return nil, &llm.Error{Code: llm.ErrInvalidRequest, Message: err.Error(), Provider: p.Name()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Retryable: true, Provider: p.Name()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, mapError(resp.StatusCode, readErrMsg(resp.Body), p.Name())
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), HTTPStatus: resp.StatusCode, Retryable: true, Provider: p.Name()}
	}
	return toResponse(gr, model), nil
}

func toResponse(gr geminiResponse, model string) *llm.Response {
	out := &llm.Response{ModelID: model}
	if len(gr.Candidates) > 0 {
		c := gr.Candidates[0]
		out.FinishReason = c.FinishReason
		for _, part := range c.Content.Parts {
			if part.Text != "" {
				out.Content += part.Text
			}
			if part.FunctionCall != nil {
				out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				})
			}
		}
	}
	if gr.UsageMetadata != nil {
		out.Usage = llm.Usage{
			PromptTokens:     gr.UsageMetadata.PromptTokenCount,
			CompletionTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gr.UsageMetadata.TotalTokenCount,
		}
	}
	return out
}

func (p *Provider) Stream(ctx context.Context, messages []llm.Message, opts llm.CompletionOptions) (<-chan llm.StreamDelta, <-chan error) {
	deltaCh := make(chan llm.StreamDelta)
	errCh := make(chan error, 1)

	model := p.model(opts)
	body := p.buildRequest(messages, nil, opts)
	payload, err := json.Marshal(body)
	if err != nil {
		go func() {
			errCh <- &llm.Error{Code: llm.ErrInvalidRequest, Message: err.Error(), Provider: p.Name()}
			close(errCh)
			close(deltaCh)
		}()
		return deltaCh, errCh
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(model, "streamGenerateContent")+"&alt=sse", bytes.NewReader(payload))
	if err != nil {
		go func() {
			errCh <- &llm.Error{Code: llm.ErrInvalidRequest, Message: err.Error(), Provider: p.Name()}
			close(errCh)
			close(deltaCh)
		}()
		return deltaCh, errCh
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		go func() {
			errCh <- &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Retryable: true, Provider: p.Name()}
			close(errCh)
			close(deltaCh)
		}()
		return deltaCh, errCh
	}

	go func() {
		defer resp.Body.Close()
		defer close(deltaCh)
		defer close(errCh)

		if resp.StatusCode >= 400 {
			errCh <- mapError(resp.StatusCode, readErrMsg(resp.Body), p.Name())
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errCh <- err
				}
				return
			}
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}

			var chunk geminiResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			for _, c := range chunk.Candidates {
				for _, part := range c.Content.Parts {
					if part.Text == "" {
						continue
					}
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case deltaCh <- llm.StreamDelta{Content: part.Text}:
					}
				}
			}
		}
	}()

	return deltaCh, errCh
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp geminiErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(data)
}

func mapError(status int, msg, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusTooManyRequests:
		return &llm.Error{Code: llm.ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case http.StatusBadRequest:
		return &llm.Error{Code: llm.ErrInvalidRequest, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &llm.Error{Code: llm.ErrUpstreamTimeout, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	default:
		return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: status >= 500, Provider: provider}
	}
}
