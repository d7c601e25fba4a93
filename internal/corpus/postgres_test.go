package corpus

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/postgres"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	client, err := postgres.New(testPostgresConfig())
	if err != nil {
		t.Skipf("skipping postgres test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testPostgresConfig() config.PostgresConfig {
	port := 5432
	if v, err := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT")); err == nil {
		port = v
	}
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "searchplatform_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "searchplatform"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestLoadPostgres(t *testing.T) {
	client := skipIfNoPostgres(t)
	ctx := context.Background()

	_, err := client.DB.ExecContext(ctx, `CREATE TEMP TABLE bm25_docs (id TEXT PRIMARY KEY, body TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = client.DB.ExecContext(ctx, `INSERT INTO bm25_docs (id, body) VALUES ('a', 'cat dog'), ('b', 'dog dog dog'), ('c', 'fish')`)
	require.NoError(t, err)

	c, err := LoadPostgres(ctx, client.DB, `SELECT id, body FROM bm25_docs ORDER BY id`)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "b", c.ID(1))
	assert.Equal(t, "dog dog dog", c.Text(1))
	assert.InDelta(t, 22.0/3.0, c.AvgLength(), 1e-12)

	_, err = LoadPostgres(ctx, client.DB, `SELECT id, body FROM bm25_docs WHERE false`)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCorpus)
}
