package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueriesDropsBlankRows(t *testing.T) {
	data := "query\nbest pizza near me\n\"\"\n\"  \"\nweather tomorrow\n"
	got, err := ReadQueries(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "best pizza near me", got[0].Text)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "weather tomorrow", got[1].Text)
	assert.Equal(t, 3, got[1].Index)
	assert.Equal(t, "weather_tomorrow", got[1].Slug)
	assert.Equal(t, 2, got[1].WordCount)
}

func TestReadQueriesFindsColumnAnywhere(t *testing.T) {
	data := "\ufeffid,query,notes\n1,  pizza  ,x\n2,,y\n3\n4,tacos\n"
	got, err := ReadQueries(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pizza", got[0].Text)
	assert.Equal(t, "tacos", got[1].Text)
	assert.Equal(t, 3, got[1].Index)
}

func TestReadQueriesMissingColumn(t *testing.T) {
	for _, data := range []string{"", "text,notes\nfoo,bar\n"} {
		_, err := ReadQueries(strings.NewReader(data))
		assert.ErrorIs(t, err, ErrMissingQueryColumn)
	}
}

func TestLoadQueriesMissingFile(t *testing.T) {
	_, err := LoadQueries(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLimitAndSummarize(t *testing.T) {
	qs, err := ReadQueries(strings.NewReader("query\na b\ncdef\na b\na b\n"))
	require.NoError(t, err)

	assert.Len(t, Limit(qs, 0), 4)
	assert.Len(t, Limit(qs, 2), 2)
	assert.Len(t, Limit(qs, 10), 4)

	s := Summarize(qs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Duplicates)
	assert.Equal(t, []string{"a b"}, s.DuplicateText)
	assert.InDelta(t, 3.25, s.AvgLength, 1e-9)
	assert.InDelta(t, 1.75, s.AvgWords, 1e-9)

	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestSummarizeDuplicatesIgnoreCase(t *testing.T) {
	qs, err := ReadQueries(strings.NewReader("query\nWeather Paris\nweather paris\nWEATHER PARIS\nweather rome\n"))
	require.NoError(t, err)

	s := Summarize(qs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Duplicates)
	assert.Equal(t, []string{"weather paris"}, s.DuplicateText)
}
