package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/resilience"
)

// Load reads the corpus described by cfg.Corpus, connecting to PostgreSQL
// only for postgres sources. The connection is retried with backoff.
func Load(ctx context.Context, cfg *config.Config) (*Corpus, error) {
	switch cfg.Corpus.Source {
	case config.SourceJSONL:
		return LoadFile(cfg.Corpus.Path, Fields{Text: cfg.Corpus.TextField, ID: cfg.Corpus.IDField})
	case config.SourcePostgres:
		var client *postgres.Client
		err := resilience.Retry(ctx, "corpus-db-connect", resilience.Backoff{}, func(context.Context) error {
			var err error
			client, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to corpus database: %w", err)
		}
		defer client.Close()
		return LoadPostgres(ctx, client.DB, cfg.Corpus.Query)
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}
