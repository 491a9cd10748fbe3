package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopProvider_ReturnsErrNoProvider(t *testing.T) {
	p := NewNoopProvider(384)
	assert.Equal(t, 384, p.Dimensions())

	_, err := p.Embed(context.Background(), "text")
	require.ErrorIs(t, err, ErrNoProvider)

	_, err = p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, checkDimensions(384, 384))
	assert.NoError(t, checkDimensions(0, 512)) // want==0 means "don't care"
	assert.Error(t, checkDimensions(384, 512))
}

func TestEmbedAll_DegradesFailedBatchToNil(t *testing.T) {
	// EmbedAll is exercised indirectly via NoopProvider to confirm a failing
	// batch leaves corresponding entries nil rather than panicking.
	texts := make([]string, 3)
	for i := range texts {
		texts[i] = "clause text"
	}
	out := EmbedAll(context.Background(), NewNoopProvider(384), texts, nil)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.Nil(t, v)
	}
}
