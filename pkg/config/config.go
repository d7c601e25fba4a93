// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// ranking engine (Corpus, Search) and for the service around it (Server,
// Postgres, Kafka, Redis, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. Search events are only
// published when Enabled is set.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents string `yaml:"searchEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// Corpus sources.
const (
	SourceJSONL    = "jsonl"
	SourcePostgres = "postgres"
)

// CorpusConfig describes where the corpus is read from. For jsonl sources
// TextField and IDField name the record keys; for postgres Query must return
// (id, text) rows.
type CorpusConfig struct {
	Source    string `yaml:"source"`
	Path      string `yaml:"path"`
	TextField string `yaml:"textField"`
	IDField   string `yaml:"idField"`
	Query     string `yaml:"query"`
}

// Term frequency modes.
const (
	TermFrequencySubstring = ranker.SubstringFrequency
	TermFrequencyToken     = ranker.TokenFrequency
)

// SearchConfig holds the BM25 constants and result limits. Workers of zero
// means one worker per available CPU.
type SearchConfig struct {
	K1            float64 `yaml:"k1"`
	B             float64 `yaml:"b"`
	TopK          int     `yaml:"topK"`
	MaxResults    int     `yaml:"maxResults"`
	Workers       int     `yaml:"workers"`
	TermFrequency string  `yaml:"termFrequency"`
}

// Params returns the BM25 constants for the ranker.
func (s SearchConfig) Params() ranker.Params {
	return ranker.Params{
		K1:            s.K1,
		B:             s.B,
		TermFrequency: s.TermFrequency,
	}
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values. The result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "searchplatform",
			User:            "searchplatform",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				SearchEvents: "search-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Corpus: CorpusConfig{
			Source:    SourceJSONL,
			Path:      "data/iodis_chunks.jsonl",
			TextField: "chunk",
			IDField:   "video_id",
			Query:     "SELECT id, body FROM documents ORDER BY id",
		},
		Search: SearchConfig{
			K1:            1.2,
			B:             0.75,
			TopK:          5,
			MaxResults:    100,
			TermFrequency: TermFrequencySubstring,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate checks the ranking-relevant settings and returns an error wrapping
// ErrInvalidConfiguration describing the first problem found.
func (c *Config) Validate() error {
	s := c.Search
	if err := s.Params().Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if s.TopK < 0 {
		return apperrors.InvalidConfiguration("search.topK must not be negative, got %d", s.TopK)
	}
	if s.MaxResults < 0 {
		return apperrors.InvalidConfiguration("search.maxResults must not be negative, got %d", s.MaxResults)
	}
	if s.Workers < 0 {
		return apperrors.InvalidConfiguration("search.workers must not be negative, got %d", s.Workers)
	}
	switch c.Corpus.Source {
	case SourceJSONL:
		if c.Corpus.TextField == "" {
			return apperrors.InvalidConfiguration("corpus.textField is required for jsonl sources")
		}
	case SourcePostgres:
		if c.Corpus.Query == "" {
			return apperrors.InvalidConfiguration("corpus.query is required for postgres sources")
		}
	default:
		return apperrors.InvalidConfiguration("unknown corpus.source %q", c.Corpus.Source)
	}
	return nil
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SP_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SP_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SP_CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("SP_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("SP_SEARCH_K1"); v != "" {
		if k1, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.K1 = k1
		}
	}
	if v := os.Getenv("SP_SEARCH_B"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.B = b
		}
	}
	if v := os.Getenv("SP_SEARCH_TOPK"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Search.TopK = k
		}
	}
	if v := os.Getenv("SP_SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = n
		}
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
