// Package corpus holds the ordered, immutable document collection the ranking
// engine scores against. Document order is significant: it aligns documents
// with score vector slots and breaks ranking ties.
package corpus

import (
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
)

// Document is a text payload with an external identifier carried through for
// display.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Corpus is an ordered sequence of documents with precomputed character
// lengths. It must not be modified once constructed.
type Corpus struct {
	docs      []Document
	lengths   []int
	avgLength float64
}

// New validates docs and computes document lengths and the average length.
func New(docs []Document) (*Corpus, error) {
	if len(docs) == 0 {
		return nil, apperrors.InvalidCorpus("corpus is empty")
	}
	c := &Corpus{
		docs:    make([]Document, len(docs)),
		lengths: make([]int, len(docs)),
	}
	copy(c.docs, docs)
	var total int64
	for i, d := range c.docs {
		n := utf8.RuneCountInString(d.Text)
		c.lengths[i] = n
		total += int64(n)
	}
	if total == 0 {
		return nil, apperrors.InvalidCorpus("all %d documents are empty", len(docs))
	}
	c.avgLength = float64(total) / float64(len(docs))
	return c, nil
}

// FromColumns builds a corpus from parallel identifier and text lists.
func FromColumns(ids, texts []string) (*Corpus, error) {
	if len(ids) != len(texts) {
		return nil, apperrors.InvalidCorpus("%d identifiers for %d documents", len(ids), len(texts))
	}
	docs := make([]Document, len(texts))
	for i := range texts {
		docs[i] = Document{ID: ids[i], Text: texts[i]}
	}
	return New(docs)
}

func (c *Corpus) Len() int { return len(c.docs) }

func (c *Corpus) Doc(i int) Document { return c.docs[i] }

func (c *Corpus) Text(i int) string { return c.docs[i].Text }

func (c *Corpus) ID(i int) string { return c.docs[i].ID }

// Length returns the character count of document i.
func (c *Corpus) Length(i int) int { return c.lengths[i] }

// AvgLength is the mean character count across all documents.
func (c *Corpus) AvgLength() float64 { return c.avgLength }
