package resolver

import (
	"context"
	"math"
	"sort"

	"github.com/vnagri/claimfusion/internal/capability"
	"github.com/vnagri/claimfusion/internal/claim"
)

// numericRelThreshold is the relative-distance admission threshold for
// numeric clustering.
const numericRelThreshold = 0.05

// semanticSimThreshold is the embedding-similarity admission threshold
// for non-numeric clustering.
const semanticSimThreshold = 0.85

// cluster is one candidate equivalence class of claims within a group.
type cluster struct {
	members []claim.Claim
	numeric bool
}

// clusterGroup partitions a group of same-(subject,predicate) claims
// into numeric and non-numeric clusters, in first-encountered order so
// election ties break deterministically.
func clusterGroup(ctx context.Context, members []claim.Claim, embedder capability.Embedder) []cluster {
	var numericMembers []claim.Claim
	var numericValues []float64
	var textMembers []claim.Claim

	for _, c := range members {
		if v, ok := parseNumeric(c.Object); ok {
			numericMembers = append(numericMembers, c)
			numericValues = append(numericValues, v)
		} else {
			textMembers = append(textMembers, c)
		}
	}

	var clusters []cluster
	clusters = append(clusters, clusterNumeric(numericMembers, numericValues)...)
	clusters = append(clusters, clusterText(ctx, textMembers, embedder)...)
	return clusters
}

// clusterNumeric sorts members by numeric value and greedily walks
// left-to-right, admitting a point into the running cluster if its
// relative distance to the cluster mean is within numericRelThreshold
//. Output preserves each cluster's original member order.
func clusterNumeric(members []claim.Claim, values []float64) []cluster {
	if len(members) == 0 {
		return nil
	}

	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	var clusters []cluster
	var curIdx []int
	var curSum float64
	var curN int

	flush := func() {
		if len(curIdx) == 0 {
			return
		}
		sort.Ints(curIdx)
		c := cluster{numeric: true}
		for _, idx := range curIdx {
			c.members = append(c.members, members[idx])
		}
		clusters = append(clusters, c)
		curIdx, curSum, curN = nil, 0, 0
	}

	for _, idx := range order {
		v := values[idx]
		if curN == 0 {
			curIdx = append(curIdx, idx)
			curSum += v
			curN++
			continue
		}
		mean := curSum / float64(curN)
		var relDist float64
		if mean == 0 {
			relDist = abs(v - mean)
		} else {
			relDist = abs(v-mean) / abs(mean)
		}
		if relDist <= numericRelThreshold {
			curIdx = append(curIdx, idx)
			curSum += v
			curN++
		} else {
			flush()
			curIdx = append(curIdx, idx)
			curSum += v
			curN++
		}
	}
	flush()

	return clusters
}

// clusterText groups non-numeric members by embedding similarity
// (threshold semanticSimThreshold) when an embedder is available,
// otherwise by case-folded exact match on object.
func clusterText(ctx context.Context, members []claim.Claim, embedder capability.Embedder) []cluster {
	if len(members) == 0 {
		return nil
	}

	if embedder == nil {
		return clusterTextExact(members)
	}

	texts := make([]string, len(members))
	for i, c := range members {
		texts[i] = c.Object
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(members) {
		return clusterTextExact(members)
	}

	var clusters []cluster
	var centroids [][]float32
	for i, c := range members {
		placed := false
		for ci, centroid := range centroids {
			if cosineSim(vectors[i], centroid) >= semanticSimThreshold {
				clusters[ci].members = append(clusters[ci].members, c)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, cluster{members: []claim.Claim{c}})
			centroids = append(centroids, vectors[i])
		}
	}
	return clusters
}

func clusterTextExact(members []claim.Claim) []cluster {
	order := make([]string, 0, len(members))
	byKey := make(map[string][]claim.Claim)
	for _, c := range members {
		key := c.ObjectKey()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], c)
	}

	clusters := make([]cluster, 0, len(order))
	for _, key := range order {
		clusters = append(clusters, cluster{members: byKey[key]})
	}
	return clusters
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func cosineSim(a, b []float32) float64 {
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
