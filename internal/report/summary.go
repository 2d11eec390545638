package report

import (
	"cmp"
	"qcl/internal/domain"
	"slices"
)

const topN = 5

// Count is a named tally.
type Count struct {
	Name  string
	Count int
}

// Summary is the run overview logged by the CLI and posted to Slack.
type Summary struct {
	Total          int
	Annotations    []Count
	TopEntities    []Count
	TopIntents     []Count
	TopTopics      []Count
	MeanConfidence float64
	Fallbacks      int
}

// Summarize tallies the flags and entity types set across results.
// Fallbacks counts results with zero confidence.
func Summarize(results []domain.Result) Summary {
	s := Summary{Total: len(results)}
	var annotations, entities, intents, topics tally
	var confidence float64
	for _, r := range results {
		annotations.flags(r.Annotation.Flags())
		intents.flags(r.Intent.Flags())
		topics.flags(r.Topic.Flags())
		for _, e := range r.Entities.Entities() {
			if len(e.Values) > 0 {
				entities.add(e.Name)
			}
		}
		confidence += r.Confidence
		if r.Confidence == 0 {
			s.Fallbacks++
		}
	}
	if s.Total > 0 {
		s.MeanConfidence = confidence / float64(s.Total)
	}
	s.Annotations = annotations.counts
	s.TopEntities = entities.top(topN)
	s.TopIntents = intents.top(topN)
	s.TopTopics = topics.top(topN)
	return s
}

type tally struct {
	counts []Count
	pos    map[string]int
}

func (t *tally) add(name string) {
	if t.pos == nil {
		t.pos = make(map[string]int)
	}
	i, ok := t.pos[name]
	if !ok {
		i = len(t.counts)
		t.pos[name] = i
		t.counts = append(t.counts, Count{Name: name})
	}
	t.counts[i].Count++
}

func (t *tally) flags(fs []domain.Flag) {
	for _, f := range fs {
		if f.Value {
			t.add(f.Name)
		}
	}
}

func (t *tally) top(n int) []Count {
	out := slices.Clone(t.counts)
	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
