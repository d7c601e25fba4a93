// Package index builds the document-frequency vocabulary for a corpus.
package index

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
)

// Vocabulary maps each lower-cased word to the number of documents it appears
// in. It is read-only once Build returns.
type Vocabulary struct {
	docFreq  map[string]int
	docCount int
}

// Build scans every document once, counting each distinct word at most once
// per document.
func Build(c *corpus.Corpus) (*Vocabulary, error) {
	if c == nil || c.Len() == 0 {
		return nil, apperrors.InvalidCorpus("cannot build vocabulary for an empty corpus")
	}
	docFreq := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		for word := range tokenizer.Distinct(c.Text(i)) {
			docFreq[word]++
		}
	}
	return &Vocabulary{
		docFreq:  docFreq,
		docCount: c.Len(),
	}, nil
}

// N is the number of documents the vocabulary was built from.
func (v *Vocabulary) N() int { return v.docCount }

// DocFreq returns the document frequency of term, or 0 if it never occurs.
func (v *Vocabulary) DocFreq(term string) int {
	return v.docFreq[strings.ToLower(term)]
}

// Size is the number of distinct words.
func (v *Vocabulary) Size() int { return len(v.docFreq) }

// Terms returns every word in lexical order.
func (v *Vocabulary) Terms() []string {
	terms := make([]string, 0, len(v.docFreq))
	for term := range v.docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
