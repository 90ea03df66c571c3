package search

import "strings"

// Fuzzy matching thresholds. Restricted to category and color fields so
// free-text scoring never picks up edit-distance noise.
const (
	fuzzyMaxDistance = 2
	fuzzyMaxRatio    = 0.3
)

// levenshtein computes the edit distance between two strings using a
// single-row DP.
func levenshtein(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev = curr
	}
	return prev[lb]
}

// fuzzyMatch reports whether token is a near-miss for target: edit distance
// at most 2 and below 30% of the longer string's length.
func fuzzyMatch(token, target string) bool {
	if token == "" || target == "" {
		return false
	}
	d := levenshtein(token, target)
	longest := len(token)
	if len(target) > longest {
		longest = len(target)
	}
	return d <= fuzzyMaxDistance && float64(d)/float64(longest) < fuzzyMaxRatio
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
