package vector

import "sort"

// Rank scores every entry against the query embedding and returns at most k
// results in descending score order. Entries with equal scores keep their
// index order (stable sort), making result order deterministic. A k of zero
// or less yields no results; a k beyond the entry count ranks everything.
//
// Rank is pure: it performs no I/O and never mutates entries.
func Rank(query []float32, entries []Entry, k int) []RankedResult {
	if k <= 0 || len(entries) == 0 {
		return nil
	}

	results := make([]RankedResult, len(entries))
	for i, e := range entries {
		results[i] = RankedResult{
			Entry: e,
			Score: Cosine(query, e.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}

	return results
}
