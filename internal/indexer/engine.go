package indexer

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer/index"
)

// Engine pairs a corpus with its vocabulary. Both are built once and only
// read afterwards, so an Engine can serve concurrent queries without locks.
type Engine struct {
	corpus      *corpus.Corpus
	vocab       *index.Vocabulary
	fingerprint string
	logger      *slog.Logger
}

func NewEngine(c *corpus.Corpus) (*Engine, error) {
	start := time.Now()
	vocab, err := index.Build(c)
	if err != nil {
		return nil, fmt.Errorf("building vocabulary: %w", err)
	}
	e := &Engine{
		corpus:      c,
		vocab:       vocab,
		fingerprint: fingerprint(c),
		logger:      slog.Default().With("component", "indexer"),
	}
	e.logger.Info("vocabulary built",
		"docs", vocab.N(),
		"terms", vocab.Size(),
		"avg_doc_length", c.AvgLength(),
		"duration", time.Since(start),
	)
	return e, nil
}

func (e *Engine) TotalDocs() int { return e.vocab.N() }

func (e *Engine) AvgDocLength() float64 { return e.corpus.AvgLength() }

func (e *Engine) DocLength(i int) int { return e.corpus.Length(i) }

func (e *Engine) Text(i int) string { return e.corpus.Text(i) }

func (e *Engine) DocID(i int) string { return e.corpus.ID(i) }

func (e *Engine) DocFreq(term string) int { return e.vocab.DocFreq(term) }

func (e *Engine) VocabularySize() int { return e.vocab.Size() }

// Fingerprint identifies the corpus contents; two engines over identical
// corpora share a fingerprint.
func (e *Engine) Fingerprint() string { return e.fingerprint }

func fingerprint(c *corpus.Corpus) string {
	h := sha256.New()
	var lenBuf [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	for i := 0; i < c.Len(); i++ {
		write(c.ID(i))
		write(c.Text(i))
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}
