// Package input reads the query table.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"qcl/internal/domain"
	"strings"
)

const queryColumn = "query"

var ErrMissingQueryColumn = errors.New("missing required 'query' column")

// LoadQueries reads a CSV file and returns its non-blank queries.
func LoadQueries(path string) ([]domain.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries: %w", err)
	}
	defer f.Close()
	queries, err := ReadQueries(f)
	if err != nil {
		return nil, fmt.Errorf("read queries %s: %w", path, err)
	}
	return queries, nil
}

// ReadQueries parses CSV rows. Index is the 0-based data-row ordinal, so
// dropped blank rows leave gaps.
func ReadQueries(r io.Reader) ([]domain.Query, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingQueryColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.TrimSpace(name) == queryColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrMissingQueryColumn
	}

	var out []domain.Query
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
			continue
		}
		out = append(out, domain.NewQuery(rec[col], row))
	}
	return out, nil
}

// Limit returns at most max queries; max <= 0 means all.
func Limit(queries []domain.Query, max int) []domain.Query {
	if max > 0 && len(queries) > max {
		return queries[:max]
	}
	return queries
}

// Stats summarizes a query set for the validate command.
type Stats struct {
	Total         int
	AvgLength     float64
	AvgWords      float64
	Duplicates    int
	DuplicateText []string
}

// Summarize computes Stats. Duplicates count repeated texts after the first,
// ignoring case.
func Summarize(queries []domain.Query) Stats {
	s := Stats{Total: len(queries)}
	if len(queries) == 0 {
		return s
	}
	seen := make(map[string]int, len(queries))
	var chars, words int
	for _, q := range queries {
		chars += len([]rune(q.Text))
		words += q.WordCount
		key := strings.ToLower(q.Text)
		seen[key]++
		if seen[key] == 2 {
			s.DuplicateText = append(s.DuplicateText, q.Text)
		}
		if seen[key] > 1 {
			s.Duplicates++
		}
	}
	s.AvgLength = float64(chars) / float64(len(queries))
	s.AvgWords = float64(words) / float64(len(queries))
	return s
}
