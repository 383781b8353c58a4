package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationValidate(t *testing.T) {
	t.Parallel()

	errE := Conversation{}.Validate()
	assert.ErrorIs(t, errE, ErrEmptyConversation)

	errE = Conversation{Messages: []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}}.Validate()
	assert.ErrorIs(t, errE, ErrLastMessageIsNotUser)

	errE = Conversation{Messages: []Message{
		{Role: RoleUser, Content: "hi"},
	}}.Validate()
	assert.NoError(t, errE)
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "hello world", "unicode: žčš 日本語"} {
		compressed, errE := Compress(s)
		require.NoError(t, errE)
		decompressed, errE := Decompress(compressed)
		require.NoError(t, errE)
		assert.Equal(t, s, decompressed)
	}
}

func TestEpochMsRoundTrip(t *testing.T) {
	t.Parallel()

	d := time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)
	ms := TimeToEpochMs(d)
	back, errE := EpochMsToTime(ms)
	require.NoError(t, errE)
	assert.True(t, d.Equal(back))
}

func TestVectorPackRoundTrip(t *testing.T) {
	t.Parallel()

	v := []float32{1.5, -2.25, 0, 3.14159}
	packed := PackVector(v)
	assert.Len(t, packed, len(v)*4)
	unpacked, errE := UnpackVector(packed)
	require.NoError(t, errE)
	assert.Equal(t, v, unpacked)
}
