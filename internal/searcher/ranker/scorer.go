package ranker

import (
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
)

// Term frequency modes. Substring counts raw case-insensitive occurrences of
// the term, including inside longer words; Token counts whole words only.
const (
	SubstringFrequency = "substring"
	TokenFrequency     = "token"
)

// Params holds the BM25 tuning constants.
type Params struct {
	K1            float64
	B             float64
	TermFrequency string
}

func DefaultParams() Params {
	return Params{
		K1:            1.2,
		B:             0.75,
		TermFrequency: SubstringFrequency,
	}
}

// Validate rejects constants for which the score is undefined.
func (p Params) Validate() error {
	if math.IsNaN(p.K1) || math.IsInf(p.K1, 0) || p.K1 <= 0 {
		return apperrors.InvalidConfiguration("k1 must be a positive finite number, got %v", p.K1)
	}
	if math.IsNaN(p.B) || p.B < 0 || p.B > 1 {
		return apperrors.InvalidConfiguration("b must be within [0, 1], got %v", p.B)
	}
	switch p.TermFrequency {
	case SubstringFrequency, TokenFrequency:
	default:
		return apperrors.InvalidConfiguration("unknown term frequency mode %q", p.TermFrequency)
	}
	return nil
}

func (p Params) termFrequency(text, term string) int {
	if p.TermFrequency == TokenFrequency {
		return tokenizer.CountToken(text, term)
	}
	return tokenizer.CountSubstring(text, term)
}

// CorpusStats carries the corpus-wide figures a single term needs.
type CorpusStats struct {
	TotalDocs    int
	AvgDocLength float64
	DocFreq      int
}

// IDF is ln(1 + (N - n + 0.5) / (n + 0.5)). It shrinks as n grows and is at
// its largest for terms that never occur.
func IDF(totalDocs, docFreq int) float64 {
	n := float64(docFreq)
	return math.Log(1 + (float64(totalDocs)-n+0.5)/(n+0.5))
}

// ScoreTerm returns the BM25 contribution of term to a document of docLen
// characters. A term absent from the document contributes exactly zero.
func ScoreTerm(term, text string, docLen int, stats CorpusStats, p Params) (float64, error) {
	f := p.termFrequency(text, term)
	if f == 0 {
		return 0, nil
	}
	if stats.AvgDocLength <= 0 {
		return 0, fmt.Errorf("%w: average document length is %v", apperrors.ErrWorkerFailure, stats.AvgDocLength)
	}
	idf := IDF(stats.TotalDocs, stats.DocFreq)
	tf := float64(f)
	lengthRatio := float64(docLen) / stats.AvgDocLength
	denominator := tf + p.K1*(1-p.B+p.B*lengthRatio)
	score := idf * (tf * (p.K1 + 1) / denominator)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: term %q produced non-finite score %v", apperrors.ErrWorkerFailure, term, score)
	}
	return score, nil
}
