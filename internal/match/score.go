// Package match scores free-text queries against candidate labels and ranks
// candidates for name-to-id resolution. It is a fallback for human input,
// not a search index: no tokenization, no locale-aware normalization beyond
// lowercasing.
package match

import "strings"

// Type classifies how a query matched a candidate.
type Type string

const (
	Exact       Type = "exact"
	CaseFold    Type = "case-insensitive"
	Substring   Type = "substring"
	Approximate Type = "approximate"
)

// Confident is the score at or above which a single top match may be applied
// without asking the user. Below it, callers are expected to surface
// alternatives instead of silently picking a low-confidence winner.
const Confident = 0.7

// MaxAlternatives caps how many alternative candidates a caller should
// surface on an ambiguous match.
const MaxAlternatives = 5

// Score rates how well query matches candidate on a [0,1] scale. Rules are
// evaluated in order, first match wins:
//
//  1. byte-for-byte equality (including both empty) → 1.0, exact
//  2. equality ignoring case → 0.95, case-insensitive
//  3. candidate contains query → 0.6 + coverage*0.3, substring
//  4. query contains candidate → 0.5 + coverage*0.3, substring
//  5. edit-distance similarity * 0.6, approximate
//
// Approximate scores are deliberately capped below substring scores. The
// substring rules are asymmetric by construction; that asymmetry is part of
// the contract.
func Score(query, candidate string) (float64, Type) {
	if query == candidate {
		return 1.0, Exact
	}

	q := strings.ToLower(query)
	c := strings.ToLower(candidate)
	if q == c {
		return 0.95, CaseFold
	}

	if strings.Contains(c, q) {
		return 0.6 + float64(len(q))/float64(len(c))*0.3, Substring
	}
	if strings.Contains(q, c) {
		return 0.5 + float64(len(c))/float64(len(q))*0.3, Substring
	}

	maxLen := len(q)
	if len(c) > maxLen {
		maxLen = len(c)
	}
	similarity := 1.0 - float64(editDistance(q, c))/float64(maxLen)
	score := similarity * 0.6
	if score < 0 {
		score = 0
	}
	return score, Approximate
}

// editDistance is the Levenshtein distance (insert/delete/substitute, unit
// cost) between two strings, computed over bytes with a two-row table.
func editDistance(a, b string) int {
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
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
