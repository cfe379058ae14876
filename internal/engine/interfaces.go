package engine

import (
	"context"

	"github.com/sprintpoint/paperchase/internal/model"
)

// Extractor pulls plain text from a document on disk.
type Extractor interface {
	Text(path string) (string, error)
}

// Classifier is the external classification capability. Implementations
// call an LLM provider; tests substitute a deterministic stub.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.ClassifiedDocument, error)
}
