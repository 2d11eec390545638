package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Result is the canonical classification record for one query.
type Result struct {
	Query          Query            `json:"query"`
	Annotation     AnnotationSchema `json:"annotation_schema"`
	Entities       EntitySchema     `json:"entity_schema"`
	Intent         IntentSchema     `json:"intent_schema"`
	Topic          TopicSchema      `json:"topic_schema"`
	PrimeCategory  string           `json:"prime_category"`
	ResearchNotes  string           `json:"research_notes"`
	Confidence     float64          `json:"confidence_score"`
	ProcessingTime time.Duration    `json:"-"`
	Timestamp      time.Time        `json:"-"`
}

type resultAlias Result

type resultOut struct {
	resultAlias
	ProcessingTime float64 `json:"processing_time"`
	Timestamp      string  `json:"timestamp"`
}

type resultIn struct {
	resultAlias
	PrimeCategory  json.RawMessage `json:"prime_category"`
	ProcessingTime float64         `json:"processing_time"`
	Timestamp      string          `json:"timestamp"`
}

// MarshalJSON writes processing_time as float seconds and timestamp as RFC 3339.
func (r Result) MarshalJSON() ([]byte, error) {
	r.Entities.Normalize()
	return json.Marshal(resultOut{
		resultAlias:    resultAlias(r),
		ProcessingTime: r.ProcessingTime.Seconds(),
		Timestamp:      r.Timestamp.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON accepts batches written by older runs, including an
// object-shaped prime_category and zone-less timestamps.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := Result(in.resultAlias)
	out.PrimeCategory = DecodePrime(in.PrimeCategory)
	out.ProcessingTime = time.Duration(in.ProcessingTime * float64(time.Second))
	if in.Timestamp != "" {
		ts, err := ParseTimestamp(in.Timestamp)
		if err != nil {
			return fmt.Errorf("result timestamp: %w", err)
		}
		out.Timestamp = ts
	}
	out.Entities.Normalize()
	*r = out
	return nil
}

// DecodePrime reduces a raw prime_category value to a bare name. A string is
// returned as is; an object yields its category field. Anything else is "".
func DecodePrime(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		for _, key := range []string{"category", "prime_category"} {
			var name string
			if v, ok := asObject[key]; ok && json.Unmarshal(v, &name) == nil {
				return name
			}
		}
	}
	return ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses RFC 3339 and the zone-less ISO-8601 forms; zone-less
// values are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Metadata describes a persisted batch. Only TotalResults and CreatedAt are
// guaranteed to be present in older files.
type Metadata struct {
	TotalResults     int       `json:"total_results"`
	CreatedAt        time.Time `json:"-"`
	RunID            string    `json:"run_id,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	Model            string    `json:"model,omitempty"`
	QueriesAttempted int       `json:"queries_attempted,omitempty"`
}

type metadataAlias Metadata

type metadataWire struct {
	metadataAlias
	CreatedAt string `json:"created_at"`
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataWire{metadataAlias(m), m.CreatedAt.Format(time.RFC3339Nano)})
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var w metadataWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Metadata(w.metadataAlias)
	if w.CreatedAt != "" {
		ts, err := ParseTimestamp(w.CreatedAt)
		if err != nil {
			return fmt.Errorf("metadata created_at: %w", err)
		}
		out.CreatedAt = ts
	}
	*m = out
	return nil
}

// Batch is the persisted envelope of one classification run.
type Batch struct {
	Metadata Metadata `json:"metadata"`
	Results  []Result `json:"results"`
}

// NewBatch wraps results, filling TotalResults from the slice length.
func NewBatch(results []Result, meta Metadata) Batch {
	if results == nil {
		results = []Result{}
	}
	meta.TotalResults = len(results)
	return Batch{Metadata: meta, Results: results}
}
