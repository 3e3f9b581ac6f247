package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkTextShortTextIsOneChunk(t *testing.T) {
	chunks := chunkText("a short sentence.", 3000, 200)
	require.Len(t, chunks, 1)
}

func TestChunkTextSplitsLongText(t *testing.T) {
	sentence := "Năng suất lúa đạt cao trong vụ mùa này. "
	text := strings.Repeat(sentence, 100)

	chunks := chunkText(text, 500, 50)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		require.LessOrEqual(t, len([]rune(c)), 500+len([]rune(sentence)), "a chunk may only overshoot by at most one sentence")
	}
}

func TestSplitSentencesKeepsTerminator(t *testing.T) {
	sentences := splitSentences("Câu một. Câu hai! Câu ba?")
	require.Equal(t, []string{"Câu một. ", "Câu hai! ", "Câu ba?"}, sentences)
}
