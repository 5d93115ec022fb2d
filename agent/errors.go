package agent

import "errors"

var (
	// ErrProviderNotSet is returned when an agent is built without an LLM provider.
	ErrProviderNotSet = errors.New("agent: llm provider not set")

	// ErrDuplicateToolName is returned when two tools registered on the
	// same agent share a name.
	ErrDuplicateToolName = errors.New("agent: duplicate tool name")

	// ErrToolNotFound is returned when a model requests a tool the agent
	// never registered.
	ErrToolNotFound = errors.New("agent: tool not found")

	// ErrEmptyName is returned when an agent or personality is built with
	// a blank display name.
	ErrEmptyName = errors.New("agent: name must not be empty")
)
