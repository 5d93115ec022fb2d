package session

import (
	"fmt"

	"github.com/cameron5906/conclave/config"
	"github.com/cameron5906/conclave/llm"
	"github.com/cameron5906/conclave/llm/providers/anthropic"
	"github.com/cameron5906/conclave/llm/providers/gemini"
	"github.com/cameron5906/conclave/llm/providers/openai"
)

// buildProvider constructs the concrete llm.Provider for a declarative
// vendor tag, dispatching to the adapter package named in the
// configuration surface.
func buildProvider(vendor string, pc config.ProviderConfig) (llm.Provider, error) {
	switch vendor {
	case "openai":
		return openai.New(openai.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model}), nil
	case "anthropic":
		return anthropic.New(anthropic.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model}), nil
	case "gemini":
		return gemini.New(gemini.Config{APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: pc.Model}), nil
	default:
		return nil, fmt.Errorf("session: unknown provider vendor %q", vendor)
	}
}
