package judge

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/vnagri/claimfusion/internal/claim"
)

// CacheKey returns the stable hash of the six strings
// (a.subject, a.predicate, a.object, b.subject, b.predicate, b.object)
// that identifies a judgment in the Judge cache. The pair is
// treated as ordered; callers comparing cluster members pairwise must
// pass (i, j) with i<j to get a consistent key for a given pair.
func CacheKey(a, b claim.Claim) string {
	var sb strings.Builder
	for _, s := range []string{a.Subject, a.Predicate, a.Object, b.Subject, b.Predicate, b.Object} {
		sb.WriteString(s)
		sb.WriteByte(0)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
