package classify

import (
	"fmt"
	"qcl/internal/domain"
	"qcl/internal/taxonomy"
	"strings"
	"time"
)

// defaultConfidence is used when a recognized reply omits confidence_score.
const defaultConfidence = 0.5

const failureNotesPrefix = "Classification failed due to API error: "

// Assemble builds the canonical result for query from a parse outcome.
// The prime category is always a registry member afterwards.
func Assemble(query domain.Query, outcome Outcome, now time.Time) domain.Result {
	parsed := outcome.Response()

	prime := parsed.PrimeCategory
	if !taxonomy.IsValid(prime) {
		prime = taxonomy.Sentinel
	}

	confidence := defaultConfidence
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}

	ts := parsed.Timestamp
	if ts.IsZero() {
		ts = now
	}

	r := domain.Result{
		Query:         query,
		Annotation:    parsed.Annotation,
		Entities:      parsed.Entities,
		Intent:        parsed.Intent,
		Topic:         parsed.Topic,
		PrimeCategory: prime,
		ResearchNotes: parsed.ResearchNotes,
		Confidence:    clamp01(confidence),
		Timestamp:     ts,
	}
	r.Entities.Normalize()
	return r
}

// FailureResult is the record kept for a query whose LLM call failed at the
// transport level. It does not go through Parse.
func FailureResult(query domain.Query, err error, now time.Time) domain.Result {
	r := domain.Result{
		Query:         query,
		Entities:      domain.EmptyEntities(),
		PrimeCategory: taxonomy.Sentinel,
		ResearchNotes: fmt.Sprintf("%s%v", failureNotesPrefix, err),
		Confidence:    0,
		Timestamp:     now,
	}
	r.Intent.Research = true
	r.Topic.OtherTopic = true
	return r
}

// IsFailure reports whether r was built by FailureResult.
func IsFailure(r domain.Result) bool {
	return r.Confidence == 0 && strings.HasPrefix(r.ResearchNotes, failureNotesPrefix)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
