package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/pool"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/logger"
)

const defaultQuery = "after the high school entrance examination, things start to get messy"

const previewLength = 300

func main() {
	configPath := flag.String("config", "", "path to config file")
	corpusPath := flag.String("corpus", "", "JSONL corpus path (overrides config)")
	topK := flag.Int("k", -1, "number of documents to print (overrides config)")
	linkFormat := flag.String("link", "https://www.youtube.com/watch?v=%s", "printf format for document links; empty disables")
	outPath := flag.String("out", "", "write results as JSON to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: bm25 [flags] [query]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusPath != "" {
		cfg.Corpus.Source = config.SourceJSONL
		cfg.Corpus.Path = *corpusPath
	}
	if *topK >= 0 {
		cfg.Search.TopK = *topK
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, "text")

	query := defaultQuery
	if flag.NArg() > 0 {
		query = strings.Join(flag.Args(), " ")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, cfg, query, *linkFormat, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "bm25: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, query, linkFormat, outPath string) error {
	fmt.Fprintf(out, "Search query: %s\n", query)

	c, err := corpus.Load(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "the number of documents is %d\n", c.Len())

	engine, err := indexer.NewEngine(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "the vocabulary size is %d\n", engine.VocabularySize())

	workers := pool.New(cfg.Search.Workers)
	defer workers.Close()

	params := cfg.Search.Params()
	result, err := executor.New(engine, workers).Execute(ctx, parser.Parse(query), params, cfg.Search.TopK)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Top %d documents:\n", cfg.Search.TopK)
	for i, doc := range result.Results {
		fmt.Fprintf(out, "%d. Document %d: Score %v\n", i+1, doc.Index, doc.Score)
		if linkFormat != "" && doc.DocID != "" {
			fmt.Fprintf(out, "   Link: %s\n", fmt.Sprintf(linkFormat, doc.DocID))
		}
		fmt.Fprintf(out, "   Preview: %s\n", preview(engine.Text(doc.Index)))
	}

	if outPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
