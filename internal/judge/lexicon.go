package judge

import "strings"

// contradictionPairs is the small, best-effort lexical contradiction
// map consulted when the LLM response fails to parse as JSON. Each entry lists terms that are mutually exclusive when they
// appear as a claim's object.
var contradictionPairs = [][]string{
	{"giải nhất", "giải nhì", "giải ba", "giải khuyến khích"},
	{"có", "không có"},
	{"đúng", "sai"},
}

// lexicalContradiction reports whether objA and objB contain terms from
// the same contradiction group but different entries within it.
func lexicalContradiction(objA, objB string) bool {
	a := strings.ToLower(objA)
	b := strings.ToLower(objB)

	for _, group := range contradictionPairs {
		ia, ib := indexOfContains(group, a), indexOfContains(group, b)
		if ia >= 0 && ib >= 0 && ia != ib {
			return true
		}
	}
	return false
}

// indexOfContains returns the index of the longest term of group that s
// contains, or -1, so "không có" is not matched as "có".
func indexOfContains(group []string, s string) int {
	best := -1
	for i, term := range group {
		if strings.Contains(s, term) && (best < 0 || len(term) > len(group[best])) {
			best = i
		}
	}
	return best
}
