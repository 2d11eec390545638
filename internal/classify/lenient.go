package classify

import (
	"encoding/json"
	"math"
	"qcl/internal/domain"
	"strconv"
	"strings"
	"time"
)

// Response is a classification object recovered from model output, before
// it is validated against the taxonomy.
type Response struct {
	Annotation    domain.AnnotationSchema
	Entities      domain.EntitySchema
	Intent        domain.IntentSchema
	Topic         domain.TopicSchema
	PrimeCategory string
	ResearchNotes string
	// Confidence is nil when the model omitted it.
	Confidence *float64
	// Timestamp is zero when the model did not supply one.
	Timestamp time.Time
}

type wireResponse struct {
	Annotation    json.RawMessage `json:"annotation_schema"`
	Entities      json.RawMessage `json:"entity_schema"`
	Intent        json.RawMessage `json:"intent_schema"`
	Topic         json.RawMessage `json:"topic_schema"`
	PrimeCategory json.RawMessage `json:"prime_category"`
	ResearchNotes json.RawMessage `json:"research_notes"`
	Confidence    json.RawMessage `json:"confidence_score"`
	Timestamp     json.RawMessage `json:"timestamp"`
}

// decodeObject succeeds only when text is a single JSON object. Field values
// of the wrong shape are coerced or dropped, never fatal.
func decodeObject(text string) (Response, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return Response{}, false
	}
	var w wireResponse
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Response{}, false
	}

	var r Response
	decodeFlags(w.Annotation, r.Annotation.Set)
	decodeFlags(w.Intent, r.Intent.Set)
	decodeFlags(w.Topic, r.Topic.Set)
	decodeEntities(w.Entities, &r.Entities)
	r.PrimeCategory = domain.DecodePrime(w.PrimeCategory)
	r.ResearchNotes = lenientString(w.ResearchNotes)
	r.Confidence = lenientFloat(w.Confidence)
	if s := lenientString(w.Timestamp); s != "" {
		if ts, err := domain.ParseTimestamp(s); err == nil {
			r.Timestamp = ts
		}
	}
	return r, true
}

func decodeFlags(raw json.RawMessage, set func(name string, v bool) bool) {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return
	}
	for name, v := range fields {
		set(name, lenientBool(v))
	}
}

func decodeEntities(raw json.RawMessage, s *domain.EntitySchema) {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) == nil {
		for name, v := range fields {
			s.Set(name, lenientStrings(v))
		}
	}
	s.Normalize()
}

func lenientBool(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f != 0
	}
	return false
}

// lenientStrings accepts ["a","b"], mixed scalar arrays, a single string or null.
func lenientStrings(raw json.RawMessage) []string {
	out := []string{}
	var asSlice []any
	if json.Unmarshal(raw, &asSlice) == nil {
		for _, v := range asSlice {
			switch x := v.(type) {
			case string:
				if x = strings.TrimSpace(x); x != "" {
					out = append(out, x)
				}
			case float64:
				out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
			case bool:
				out = append(out, strconv.FormatBool(x))
			}
		}
		return out
	}
	var asString string
	if json.Unmarshal(raw, &asString) == nil {
		if asString = strings.TrimSpace(asString); asString != "" {
			out = append(out, asString)
		}
	}
	return out
}

func lenientString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

func lenientFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return &f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	}
	return nil
}
