// Package tokencount estimates token usage for text under a given model.
package tokencount

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates the number of tokens a string would consume for a
// given model. Implementations must be safe for concurrent use.
type Counter interface {
	Count(model, text string) int
}

// modelEncodings maps known model name prefixes to their tiktoken encoding.
var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
	"claude":        "cl100k_base", // Anthropic models are not tiktoken-native; cl100k is the closest BPE approximation.
}

// TiktokenCounter backs known OpenAI/Anthropic-family models with
// tiktoken-go and falls back to the chars/4 heuristic for everything else.
type TiktokenCounter struct {
	mu    sync.Mutex
	cache map[string]*tiktoken.Tiktoken
}

// NewTiktokenCounter constructs a TiktokenCounter.
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{cache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *TiktokenCounter) encodingFor(model string) string {
	best, encName := "", ""
	for prefix, enc := range modelEncodings {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, encName = prefix, enc
		}
	}
	return encName
}

func (c *TiktokenCounter) Count(model, text string) int {
	if text == "" {
		return 0
	}

	encName := c.encodingFor(model)
	if encName == "" {
		return EstimateFromLength(text)
	}

	c.mu.Lock()
	enc, ok := c.cache[encName]
	if !ok {
		var err error
		enc, err = tiktoken.GetEncoding(encName)
		if err != nil {
			c.mu.Unlock()
			return EstimateFromLength(text)
		}
		c.cache[encName] = enc
	}
	c.mu.Unlock()

	return len(enc.Encode(text, nil, nil))
}

// EstimateFromLength is the universal fallback: ceil(chars/4).
func EstimateFromLength(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if len(text)%4 != 0 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// heuristicCounter always uses EstimateFromLength; used when a project
// wants to avoid pulling in a real tokenizer for a given model family.
type heuristicCounter struct{}

func (heuristicCounter) Count(_, text string) int { return EstimateFromLength(text) }

// NewHeuristicCounter returns a Counter that never loads an encoding table.
func NewHeuristicCounter() Counter { return heuristicCounter{} }
