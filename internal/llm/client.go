// Package llm provides the document classification boundary.
//
// Classification is delegated to an external LLM provider: the package
// sends truncated PDF text and parses the structured JSON reply into a
// model.ClassifiedDocument. Tests substitute the Client interface with a
// deterministic stub rather than exercising a provider.
package llm

import (
	"context"
	"time"

	"github.com/sprintpoint/paperchase/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, text string) (model.ClassifiedDocument, error)
}

// Config holds LLM provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	CacheTTL    time.Duration
}
