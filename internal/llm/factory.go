package llm

import (
	"fmt"
	"strings"

	"github.com/sprintpoint/paperchase/internal/common"
)

// NewClient creates an LLM client based on the provided configuration.
// The returned client is wrapped in a result cache when cfg.CacheTTL is
// positive, so identical document text within a run is classified once.
func NewClient(cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(cfg.Provider) {
	case "anthropic", "":
		client, err = newAnthropicClient(cfg)
	case "openai":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheTTL > 0 {
		client = newCachingClient(client, cfg.CacheTTL)
	}

	return client, nil
}
