package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintpoint/paperchase/internal/model"
)

// countingClient counts calls and returns a fixed document or error.
type countingClient struct {
	doc   model.ClassifiedDocument
	err   error
	calls int
}

func (c *countingClient) Classify(_ context.Context, _ string) (model.ClassifiedDocument, error) {
	c.calls++
	return c.doc, c.err
}

func TestCachingClient_CachesByText(t *testing.T) {
	inner := &countingClient{doc: model.ClassifiedDocument{Type: model.TypeSprintPointInvoice}}
	client := newCachingClient(inner, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		doc, err := client.Classify(ctx, "same text")
		require.NoError(t, err)
		assert.Equal(t, model.TypeSprintPointInvoice, doc.Type)
	}
	assert.Equal(t, 1, inner.calls)

	_, err := client.Classify(ctx, "different text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingClient_DoesNotCacheErrors(t *testing.T) {
	inner := &countingClient{err: errors.New("boom")}
	client := newCachingClient(inner, time.Minute)

	ctx := context.Background()
	_, err := client.Classify(ctx, "text")
	require.Error(t, err)
	_, err = client.Classify(ctx, "text")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingClient_ExpiresEntries(t *testing.T) {
	inner := &countingClient{doc: model.ClassifiedDocument{Type: model.TypeSprintPointInvoice}}
	client := newCachingClient(inner, time.Nanosecond)

	ctx := context.Background()
	_, err := client.Classify(ctx, "text")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = client.Classify(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
