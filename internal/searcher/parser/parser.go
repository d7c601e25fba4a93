package parser

import "strings"

// QueryPlan holds the raw query and its terms in query order. Terms are kept
// verbatim; case folding happens during scoring.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse splits query on whitespace. Repeated terms are kept and contribute
// once per occurrence.
func Parse(query string) *QueryPlan {
	terms := strings.Fields(query)
	if terms == nil {
		terms = make([]string, 0)
	}
	return &QueryPlan{
		Terms:    terms,
		RawQuery: query,
	}
}
