// Package ranker implements BM25 term scoring and orders score vectors into
// rankings. Rankings sort by score descending and break ties by ascending
// document index, so equal scores keep corpus order.
package ranker

import (
	"container/heap"
	"sort"
)

type ScoredDoc struct {
	Index int     `json:"index"`
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

func before(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// Rank returns every document index ordered by score.
func Rank(scores []float64) []ScoredDoc {
	result := make([]ScoredDoc, len(scores))
	for i, s := range scores {
		result[i] = ScoredDoc{Index: i, Score: s}
	}
	sort.Slice(result, func(i, j int) bool {
		return before(result[i], result[j])
	})
	return result
}

// TopK returns the first k entries of Rank(scores). k larger than the vector
// returns everything; k <= 0 returns nothing.
func TopK(scores []float64, k int) []ScoredDoc {
	if k <= 0 {
		return []ScoredDoc{}
	}
	if k >= len(scores) {
		return Rank(scores)
	}
	h := &worstFirst{}
	for i, s := range scores {
		heap.Push(h, ScoredDoc{Index: i, Score: s})
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

// worstFirst keeps the lowest-ranked entry at the root so it can be evicted.
type worstFirst []ScoredDoc

func (h worstFirst) Len() int { return len(h) }

func (h worstFirst) Less(i, j int) bool { return before(h[j], h[i]) }

func (h worstFirst) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
