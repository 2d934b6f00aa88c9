package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/delphi/internal/domain/commonModels"
)

// words returns n nine-letter words joined by single spaces plus a trailing
// space, i.e. exactly 10*n characters.
func words(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("wordword")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(' ')
	}
	return b.String()
}

func TestNewSplitter_InvalidConfig(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.size, tt.overlap)
			assert.ErrorIs(t, err, commonModels.ErrInvalidChunkConfig)
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	s, err := NewSplitter(1000, 150)
	require.NoError(t, err)

	assert.Empty(t, s.Chunks(""))
	assert.Empty(t, s.Chunks(" \n\n \n "))
}

func TestSplit_SmallTextIsOneChunk(t *testing.T) {
	s, err := NewSplitter(1000, 150)
	require.NoError(t, err)

	chunks := s.Chunks("  Page one content.  ")
	assert.Equal(t, []string{"Page one content."}, chunks)
}

func TestSplit_ThreeThousandCharacterPage(t *testing.T) {
	s, err := NewSplitter(1000, 150)
	require.NoError(t, err)

	text := words(300)
	require.Equal(t, 3000, len(text))

	chunks := s.Chunks(text)
	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 1000, "chunk %d too long", i)
	}

	// the next chunk starts with the tail of the previous one
	for i := 1; i < len(chunks); i++ {
		head := chunks[i][:100]
		assert.Contains(t, chunks[i-1], head, "chunk %d does not overlap chunk %d", i, i-1)
		assert.LessOrEqual(t, len(head), 150)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, err := NewSplitter(200, 30)
	require.NoError(t, err)

	text := strings.Repeat("A sentence about retrieval. Another one about chunks.\n", 40)
	first := s.Chunks(text)
	second := s.Chunks(text)
	assert.Equal(t, first, second)
}

func TestSplit_SequenceIsRestartable(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	seq := s.Split(words(20))

	var a, b []string
	for c := range seq {
		a = append(a, c)
	}
	for c := range seq {
		b = append(b, c)
	}
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)

	// stopping early is allowed
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	s, err := NewSplitter(1000, 150)
	require.NoError(t, err)

	p1 := strings.TrimSpace(words(60))
	p2 := strings.TrimSpace(words(60))
	chunks := s.Chunks(p1 + "\n\n" + p2)

	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0])
	assert.Equal(t, p2, chunks[1])
}

func TestSplit_FallsBackToCharacters(t *testing.T) {
	s, err := NewSplitter(10, 2)
	require.NoError(t, err)

	chunks := s.Chunks(strings.Repeat("x", 35))
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 10)
	}
	assert.Equal(t, strings.Repeat("x", 10), chunks[0])
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	s, err := NewSplitter(10, 0)
	require.NoError(t, err)

	chunks := s.Chunks("ééééé ééééé ééééé")
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Len(t, chunks, 3)
}
