package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 16 << 20

// Fields names the record keys holding the document text and identifier. An
// empty ID key leaves identifiers blank.
type Fields struct {
	Text string
	ID   string
}

// ReadJSONL decodes one JSON object per line. Blank lines are skipped; a
// malformed line or a record without a string text field is an error naming
// the line.
func ReadJSONL(r io.Reader, fields Fields) (*Corpus, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var docs []Document
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var record map[string]json.RawMessage
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("line %d: decoding record: %w", line, err)
		}
		text, err := stringField(record, fields.Text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var id string
		if fields.ID != "" {
			if id, err = stringField(record, fields.ID); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		docs = append(docs, Document{ID: id, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return New(docs)
}

// LoadFile opens path and reads it with ReadJSONL.
func LoadFile(path string, fields Fields) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()
	c, err := ReadJSONL(f, fields)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", path, err)
	}
	return c, nil
}

// stringField accepts string values as-is and renders numbers verbatim, since
// identifiers are sometimes numeric.
func stringField(record map[string]json.RawMessage, key string) (string, error) {
	raw, ok := record[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("field %q is not a string", key)
}
