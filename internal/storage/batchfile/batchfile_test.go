package batchfile

import (
	"os"
	"path/filepath"
	"qcl/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	r := domain.Result{
		Query:          domain.NewQuery("best pizza near me", 0),
		Entities:       domain.EmptyEntities(),
		PrimeCategory:  "Local_Category",
		ResearchNotes:  "local intent",
		Confidence:     0.8,
		ProcessingTime: 3 * time.Second,
		Timestamp:      time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC),
	}
	r.Intent.LocalInfo = true
	r.Topic.FoodDining = true
	r.Entities.TypeOfOrganization = []string{"pizza restaurant"}

	want := domain.NewBatch([]domain.Result{r}, domain.Metadata{
		CreatedAt:        time.Date(2025, 2, 2, 8, 1, 0, 0, time.UTC),
		RunID:            "0b7c5d8e-8a4c-4f5a-9d43-3f1f0f0a1b2c",
		Provider:         "mock",
		Model:            "mock",
		QueriesAttempted: 1,
	})

	path := filepath.Join(t.TempDir(), "nested", "batch.json")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadLegacyBatch(t *testing.T) {
	legacy := `{
  "metadata": {"total_results": 1, "created_at": "2024-07-01T10:11:12.345678"},
  "results": [{
    "query": {"text": "cheap flights", "index": 4, "slug": "cheap_flights", "word_count": 2},
    "annotation_schema": {"ambiguous": false},
    "entity_schema": {},
    "intent_schema": {"shopping": true},
    "topic_schema": {"travel_lodging": true},
    "prime_category": {"category": "Shopping"},
    "research_notes": "",
    "confidence_score": 0.6,
    "processing_time": 1.75,
    "timestamp": "2024-07-01T10:11:00.000001"
  }]
}`
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	require.Len(t, b.Results, 1)
	assert.Equal(t, "Shopping", b.Results[0].PrimeCategory)
	assert.Equal(t, 1750*time.Millisecond, b.Results[0].ProcessingTime)
	assert.Equal(t, 4, b.Results[0].Query.Index)
	assert.Equal(t, 2024, b.Metadata.CreatedAt.Year())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrMalformed)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"metadata": {"total_results": 0}}`), 0o644))
	b, err := Load(empty)
	require.NoError(t, err)
	assert.NotNil(t, b.Results)
}
