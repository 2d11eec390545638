// Package report rolls classification results up into the CSV reports
// consumed by analysts: a per-query detail table, a PRIME category
// distribution and a Meta category aggregation.
package report

import (
	"cmp"
	"fmt"
	"qcl/internal/domain"
	"qcl/internal/taxonomy"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Table is a header plus string rows, ready for CSV encoding.
type Table struct {
	Header []string
	Rows   [][]string
}

// Detailed flattens every result into one wide row.
func Detailed(results []domain.Result) Table {
	header := []string{"query_text", "query_index", "query_word_count"}
	for _, f := range domain.AnnotationFields() {
		header = append(header, "annotation_"+f.Name)
	}
	for _, f := range domain.EntityFields() {
		header = append(header, "entity_"+f.Name)
	}
	for _, f := range domain.IntentFields() {
		header = append(header, "intent_"+f.Name)
	}
	for _, f := range domain.TopicFields() {
		header = append(header, "topic_"+f.Name)
	}
	header = append(header,
		"prime_category", "meta_category", "research_notes",
		"confidence_score", "processing_time_seconds", "timestamp",
	)

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := make([]string, 0, len(header))
		row = append(row, r.Query.Text, strconv.Itoa(r.Query.Index), strconv.Itoa(r.Query.WordCount))
		row = appendFlags(row, r.Annotation.Flags())
		for _, e := range r.Entities.Entities() {
			row = append(row, strings.Join(e.Values, ", "))
		}
		row = appendFlags(row, r.Intent.Flags())
		row = appendFlags(row, r.Topic.Flags())

		prime := r.PrimeCategory
		row = append(row,
			prime,
			taxonomy.MetaOf(prime),
			r.ResearchNotes,
			formatFloat(r.Confidence),
			formatFloat(r.ProcessingTime.Seconds()),
			formatTime(r.Timestamp),
		)
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

func appendFlags(row []string, flags []domain.Flag) []string {
	for _, f := range flags {
		row = append(row, strconv.FormatBool(f.Value))
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// PrimeRow is one line of the PRIME distribution.
type PrimeRow struct {
	Meta       string
	Prime      string
	Count      int
	Percentage string
}

// Prime counts results per PRIME category, most frequent first. Ties keep
// the order in which the categories were first seen.
func Prime(results []domain.Result) []PrimeRow {
	counts := countInOrder(results, primeOf)
	rows := make([]PrimeRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, PrimeRow{
			Meta:       taxonomy.MetaOf(c.key),
			Prime:      c.key,
			Count:      c.n,
			Percentage: percent(c.n, len(results)),
		})
	}
	return rows
}

// MetaRow is one line of the Meta aggregation.
type MetaRow struct {
	Meta       string
	Display    string
	Definition string
	Count      int
}

// Meta counts results per Meta category, most frequent first.
func Meta(results []domain.Result) []MetaRow {
	counts := countInOrder(results, func(r domain.Result) string {
		return taxonomy.MetaOf(primeOf(r))
	})
	rows := make([]MetaRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, MetaRow{
			Meta:       c.key,
			Display:    fmt.Sprintf("%d (%s)", c.n, percent(c.n, len(results))),
			Definition: taxonomy.MetaDefinition(c.key),
			Count:      c.n,
		})
	}
	return rows
}

func primeOf(r domain.Result) string {
	if r.PrimeCategory == "" {
		return taxonomy.Sentinel
	}
	return r.PrimeCategory
}

type keyCount struct {
	key string
	n   int
}

func countInOrder(results []domain.Result, key func(domain.Result) string) []keyCount {
	var out []keyCount
	pos := make(map[string]int)
	for _, r := range results {
		k := key(r)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, keyCount{key: k})
		}
		out[i].n++
	}
	slices.SortStableFunc(out, func(a, b keyCount) int { return cmp.Compare(b.n, a.n) })
	return out
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

var (
	primeHeader = []string{
		"Meta (for aggregations and piechart)",
		"PRIME (known as OYE in previous projects)",
		"Query Count",
		"Percentage of Total",
	}
	metaHeader = []string{
		`category - groups include "Answers" equivalents`,
		"query volume for meta group",
		"definition of meta group",
	}
)

// PrimeTable renders Prime rows with the report headers.
func PrimeTable(rows []PrimeRow) Table {
	t := Table{Header: primeHeader, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Meta, r.Prime, strconv.Itoa(r.Count), r.Percentage})
	}
	return t
}

// MetaTable renders Meta rows with the report headers.
func MetaTable(rows []MetaRow) Table {
	t := Table{Header: metaHeader, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Meta, r.Display, r.Definition})
	}
	return t
}
