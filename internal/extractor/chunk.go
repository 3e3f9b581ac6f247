package extractor

import "regexp"

// sentenceBoundary matches a sentence terminator followed by whitespace,
// the split point used to keep fact-bearing sentences intact across
// chunk boundaries.
var sentenceBoundary = regexp.MustCompile(`([.!?…])\s+`)

// splitSentences breaks text into sentences on terminator+whitespace
// boundaries. The terminator is kept attached to the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[last:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

// chunkText splits text into overlapping chunks: text at or under
// chunkSize is returned as a single chunk; larger text is split into
// sentences and greedily accumulated into chunks no larger than
// chunkSize, with the tail `overlap` characters of each chunk repeated
// at the start of the next so a sentence split across the boundary is
// not lost. Sentences are never split: a chunk exceeds chunkSize when a
// single sentence, together with the carried overlap, is longer than
// chunkSize.
func chunkText(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	sentences := splitSentences(text)
	var chunks []string
	var current []rune
	carry := ""

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, string(current))
		tail := current
		if len(tail) > overlap {
			tail = tail[len(tail)-overlap:]
		}
		carry = string(tail)
		current = nil
	}

	for _, sentence := range sentences {
		if len(current) == 0 && carry != "" {
			current = []rune(carry)
		}
		sr := []rune(sentence)
		if len(current) > 0 && len(current)+len(sr) > chunkSize {
			flush()
			if carry != "" {
				current = []rune(carry)
			}
		}
		current = append(current, sr...)
	}
	flush()

	return chunks
}
