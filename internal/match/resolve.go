package match

import "sort"

// Result is one scored candidate from Match.
type Result[T any] struct {
	Item  T
	Label string
	Score float64
	Type  Type
}

// Match scores query against every candidate's label, drops anything scoring
// at or below the relevance floor (0.3), and returns the rest best-first.
// Ties keep input order (stable sort), so resolution is deterministic.
func Match[T any](query string, candidates []T, label func(T) string) []Result[T] {
	results := make([]Result[T], 0, len(candidates))
	for _, cand := range candidates {
		l := label(cand)
		score, typ := Score(query, l)
		if score <= 0.3 {
			continue
		}
		results = append(results, Result[T]{Item: cand, Label: l, Score: score, Type: typ})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Ambiguous reports whether a result set is too uncertain to act on
// silently: the top score is below Confident and there was more than one
// candidate to choose from.
func Ambiguous[T any](results []Result[T], candidateCount int) bool {
	if len(results) == 0 {
		return false
	}
	return results[0].Score < Confident && candidateCount > 1
}
