package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeWithTimeoutReturnsNormalizedText(t *testing.T) {
	t.Parallel()

	text, ok := normalizeWithTimeout(context.Background(), zerolog.Nop(), "Test", "Some plain text.", time.Second)
	assert.True(t, ok)
	assert.Contains(t, text, "Some plain text.")
}

func TestNormalizeWithTimeoutDropsSlowPage(t *testing.T) {
	t.Parallel()

	_, ok := normalizeWithTimeout(context.Background(), zerolog.Nop(), "Test", "Some plain text.", time.Nanosecond)
	assert.False(t, ok)
}

func TestNormalizeWithTimeoutRespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := normalizeWithTimeout(ctx, zerolog.Nop(), "Test", "Some plain text.", time.Second)
	assert.False(t, ok)
}
