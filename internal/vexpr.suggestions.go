package internal

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// FindSimilarStrings returns up to limit candidates resembling target.
// Fuzzy subsequence matches rank first; candidates within a small edit
// distance fill the remaining slots so transposed letters are caught too.
func FindSimilarStrings(target string, candidates []string, limit int) []string {
	if target == StringValueEmpty || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	result := make([]string, 0, limit)
	for _, m := range fuzzy.Find(target, candidates) {
		if len(result) == limit {
			return result
		}
		if m.Str != StringValueEmpty {
			result = append(result, m.Str)
		}
	}

	maxDistance := len(target) / 2
	if maxDistance < 2 {
		maxDistance = 2
	}
	targetLower := strings.ToLower(target)

	type scored struct {
		str      string
		distance int
	}
	var near []scored
	for _, candidate := range candidates {
		if candidate == StringValueEmpty || slices.Contains(result, candidate) {
			continue
		}
		if d := levenshteinDistance(targetLower, strings.ToLower(candidate)); d <= maxDistance {
			near = append(near, scored{str: candidate, distance: d})
		}
	}
	slices.SortStableFunc(near, func(a, b scored) int { return a.distance - b.distance })

	for _, s := range near {
		if len(result) == limit {
			break
		}
		result = append(result, s.str)
	}
	return result
}

// levenshteinDistance is the minimum number of single-character edits
// needed to turn a into b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
