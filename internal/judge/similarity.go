package judge

import (
	"math"

	"github.com/agext/levenshtein"
)

// cosine returns the cosine similarity of two equal-length embedding
// vectors, or 0 if either is empty or their lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// stringSimilarity returns the Levenshtein-based similarity ratio in
// [0,1] between two strings, used as the embedding-unavailable fallback
// in the decision ladder.
func stringSimilarity(a, b string) float64 {
	return levenshtein.Match(a, b, nil)
}
