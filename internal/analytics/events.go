// Package analytics publishes search events to Kafka off the request path.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventFailed     EventType = "search_failed"
)

type SearchEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Terms       []string  `json:"terms"`
	TotalDocs   int       `json:"total_docs"`
	Returned    int       `json:"returned"`
	TopDocID    string    `json:"top_doc_id,omitempty"`
	TopScore    float64   `json:"top_score"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Fingerprint string    `json:"corpus_fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}
