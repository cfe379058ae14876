package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sprintpoint/paperchase/internal/model"
)

// MockClassifier is a test implementation of the Classifier interface.
// It returns canned documents keyed by a marker substring of the input
// text, so tests control classification deterministically.
type MockClassifier struct {
	docs  map[string]model.ClassifiedDocument
	errs  map[string]error
	calls []string
	mu    sync.Mutex
}

// NewMockClassifier creates a new mock classifier.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		docs: make(map[string]model.ClassifiedDocument),
		errs: make(map[string]error),
	}
}

// Stub registers the document to return when the classified text contains
// marker.
func (m *MockClassifier) Stub(marker string, doc model.ClassifiedDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[marker] = doc
}

// StubError registers an error to return when the text contains marker.
func (m *MockClassifier) StubError(marker string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[marker] = err
}

// Classify returns the stub whose marker appears in text.
func (m *MockClassifier) Classify(_ context.Context, text string) (model.ClassifiedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)

	for marker, err := range m.errs {
		if strings.Contains(text, marker) {
			return model.ClassifiedDocument{}, err
		}
	}
	for marker, doc := range m.docs {
		if strings.Contains(text, marker) {
			return doc, nil
		}
	}
	return model.ClassifiedDocument{}, fmt.Errorf("no stub for text %q", text)
}

// CallCount returns the number of Classify invocations.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
