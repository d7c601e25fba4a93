package corpus

import (
	"context"
	"database/sql"
	"fmt"
)

// LoadPostgres runs query, which must return (id, text) rows, and builds a
// corpus in row order.
func LoadPostgres(ctx context.Context, db *sql.DB, query string) (*Corpus, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Text); err != nil {
			return nil, fmt.Errorf("scanning document row %d: %w", len(docs), err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return New(docs)
}
