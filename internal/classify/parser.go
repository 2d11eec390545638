// Package classify turns one query into a validated classification: it
// prompts the model, recovers JSON from the reply and assembles the result.
package classify

import (
	"qcl/internal/taxonomy"
	"regexp"

	"go.uber.org/zap"
)

// Strategy names the recovery step that produced a classification.
type Strategy int

const (
	StrategyDirect Strategy = iota + 1
	StrategyEmbedded
	StrategyFenced
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyEmbedded:
		return "embedded"
	case StrategyFenced:
		return "fenced"
	default:
		return "unknown"
	}
}

// Outcome is either Recognized or Fallback.
type Outcome interface {
	// Response returns the classification fields this outcome stands for.
	Response() Response
	sealed()
}

// Recognized is a reply from which a JSON object was recovered.
type Recognized struct {
	Strategy Strategy
	Fields   Response
}

func (r Recognized) Response() Response { return r.Fields }
func (Recognized) sealed()              {}

// Fallback is a reply in which no JSON object could be found.
type Fallback struct {
	Reason string
}

const fallbackNotes = "Failed to parse classification response - using default"

// Response returns the default shape: research intent, other topic, the
// sentinel category and zero confidence.
func (f Fallback) Response() Response {
	zero := 0.0
	r := Response{
		PrimeCategory: taxonomy.Sentinel,
		ResearchNotes: fallbackNotes,
		Confidence:    &zero,
	}
	r.Intent.Research = true
	r.Topic.OtherTopic = true
	r.Entities.Normalize()
	return r
}

func (Fallback) sealed() {}

const maxLoggedResponse = 200

var (
	embeddedObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	fencedObjectRe   = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
)

// Parse recovers a classification object from raw model text. It never
// fails: the first of direct, embedded and fenced decoding to yield a JSON
// object wins, else a Fallback is returned.
func Parse(raw string, log *zap.Logger) Outcome {
	if r, ok := decodeObject(raw); ok {
		return Recognized{Strategy: StrategyDirect, Fields: r}
	}
	if m := embeddedObjectRe.FindString(raw); m != "" {
		if r, ok := decodeObject(m); ok {
			return Recognized{Strategy: StrategyEmbedded, Fields: r}
		}
	}
	if m := fencedObjectRe.FindStringSubmatch(raw); m != nil {
		if r, ok := decodeObject(m[1]); ok {
			return Recognized{Strategy: StrategyFenced, Fields: r}
		}
	}

	if log != nil {
		log.Warn("llm classify unparseable response",
			zap.String("response", truncate(raw, maxLoggedResponse)),
			zap.Int("length", len(raw)))
	}
	return Fallback{Reason: "no JSON object found in model response"}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
