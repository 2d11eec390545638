package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"qcl/internal/domain"
	"qcl/internal/taxonomy"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(text string, index int, prime string) domain.Result {
	return domain.Result{
		Query:         domain.NewQuery(text, index),
		Entities:      domain.EmptyEntities(),
		PrimeCategory: prime,
		Confidence:    0.8,
		Timestamp:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func primes(names ...string) []domain.Result {
	out := make([]domain.Result, len(names))
	for i, n := range names {
		out[i] = result("query "+strconv.Itoa(i), i, n)
	}
	return out
}

func TestPrimeDistribution(t *testing.T) {
	rows := Prime(primes("Weather", "Weather", "News"))
	require.Len(t, rows, 2)
	assert.Equal(t, PrimeRow{Meta: "Weather", Prime: "Weather", Count: 2, Percentage: "66.7%"}, rows[0])
	assert.Equal(t, PrimeRow{Meta: "News (undercounted)", Prime: "News", Count: 1, Percentage: "33.3%"}, rows[1])
}

func TestPrimeTiesKeepFirstSeenOrder(t *testing.T) {
	rows := Prime(primes("News", "Shopping", "Weather", "Shopping", "Weather"))
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Prime
	}
	assert.Equal(t, []string{"Shopping", "Weather", "News"}, got)
}

func TestPrimeEmptyCategoryCountsAsSentinel(t *testing.T) {
	rows := Prime(primes("", taxonomy.Sentinel))
	require.Len(t, rows, 1)
	assert.Equal(t, taxonomy.Sentinel, rows[0].Prime)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, "100.0%", rows[0].Percentage)
}

func TestPercentagesSumToHundred(t *testing.T) {
	results := primes("Weather", "News", "Shopping", "ANSWERS_Tech", "ANSWERS_Food",
		"Local_Chain", "Weather", "QUICKFACT_Time", "News", "Place", "TV_Show")
	sum := 0.0
	total := 0
	for _, r := range Prime(results) {
		p, err := strconv.ParseFloat(strings.TrimSuffix(r.Percentage, "%"), 64)
		require.NoError(t, err)
		sum += p
		total += r.Count
	}
	assert.Equal(t, len(results), total)
	assert.InDelta(t, 100, sum, 0.1*float64(len(results)))
}

func TestMetaRollup(t *testing.T) {
	rows := Meta(primes("ANSWERS_Tech", "ANSWERS_Food", "Weather", "not-a-category"))
	require.Len(t, rows, 3)
	assert.Equal(t, MetaRow{
		Meta:       "Answers",
		Display:    "2 (50.0%)",
		Definition: "Show opinions, advice, recommendations from others",
		Count:      2,
	}, rows[0])
	assert.Equal(t, "Weather", rows[1].Meta)
	assert.Equal(t, taxonomy.DefaultMeta, rows[2].Meta)
	assert.Equal(t, "Queries related to other categories", rows[2].Definition)
}

func TestEmptyBatchHasNoRows(t *testing.T) {
	assert.Empty(t, Prime(nil))
	assert.Empty(t, Meta(nil))

	pt := PrimeTable(nil)
	assert.Equal(t, primeHeader, pt.Header)
	assert.Empty(t, pt.Rows)
	mt := MetaTable(nil)
	assert.Equal(t, metaHeader, mt.Header)

	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.MeanConfidence)
}

func TestDetailedColumns(t *testing.T) {
	r := result("weather in paris", 7, "Weather")
	r.Annotation.Ambiguous = true
	r.Entities.SpecificPlaceCity = []string{"Paris", "France"}
	r.Intent.SimpleFact = true
	r.Topic.Weather = true
	r.ResearchNotes = "forecast"
	r.ProcessingTime = 1500 * time.Millisecond

	tbl := Detailed([]domain.Result{r})
	require.Len(t, tbl.Header, 3+3+18+10+29+6)
	require.Len(t, tbl.Rows, 1)
	row := make(map[string]string, len(tbl.Header))
	for i, h := range tbl.Header {
		row[h] = tbl.Rows[0][i]
	}

	assert.Equal(t, "weather in paris", row["query_text"])
	assert.Equal(t, "7", row["query_index"])
	assert.Equal(t, "3", row["query_word_count"])
	assert.Equal(t, "true", row["annotation_ambiguous"])
	assert.Equal(t, "false", row["annotation_misspelled_malformed"])
	assert.Equal(t, "Paris, France", row["entity_specific_place_city"])
	assert.Equal(t, "", row["entity_website"])
	assert.Equal(t, "true", row["intent_simple_fact"])
	assert.Equal(t, "true", row["topic_weather"])
	assert.Equal(t, "false", row["topic_other_topic"])
	assert.Equal(t, "Weather", row["prime_category"])
	assert.Equal(t, "Weather", row["meta_category"])
	assert.Equal(t, "0.8", row["confidence_score"])
	assert.Equal(t, "1.5", row["processing_time_seconds"])
	assert.Equal(t, "2025-03-01T12:00:00Z", row["timestamp"])
}

func TestSummarize(t *testing.T) {
	a := result("a", 0, "Weather")
	a.Annotation.Ambiguous = true
	a.Intent.SimpleFact = true
	a.Entities.Website = []string{"example.com"}
	b := result("b", 1, taxonomy.Sentinel)
	b.Confidence = 0
	b.Intent.SimpleFact = true
	b.Intent.Research = true

	s := Summarize([]domain.Result{a, b})
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Fallbacks)
	assert.InDelta(t, 0.4, s.MeanConfidence, 1e-9)
	assert.Equal(t, []Count{{"ambiguous", 1}}, s.Annotations)
	assert.Equal(t, []Count{{"website", 1}}, s.TopEntities)
	assert.Equal(t, []Count{{"simple_fact", 2}, {"research", 1}}, s.TopIntents)
	assert.Empty(t, s.TopTopics)
}

func TestGenerateWritesThreeFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	batch := domain.NewBatch(primes("Weather", "Weather", "News"), domain.Metadata{})

	files, err := Generate(batch, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PrimeFile), files.Prime)

	records := readCSV(t, files.Prime)
	require.Len(t, records, 3)
	assert.Equal(t, primeHeader, records[0])
	assert.Equal(t, []string{"Weather", "Weather", "2", "66.7%"}, records[1])

	records = readCSV(t, files.Meta)
	assert.Equal(t, `category - groups include "Answers" equivalents`, records[0][0])
	assert.Equal(t, "2 (66.7%)", records[1][1])

	records = readCSV(t, files.Detailed)
	assert.Len(t, records, 4)
}

func TestGenerateEmptyBatch(t *testing.T) {
	files, err := Generate(domain.NewBatch(nil, domain.Metadata{}), t.TempDir())
	require.NoError(t, err)
	for _, p := range []string{files.Detailed, files.Prime, files.Meta} {
		assert.Len(t, readCSV(t, p), 1, p)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}
