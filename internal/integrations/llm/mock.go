package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// Mock is an in-process Client. With Respond unset it answers with a
// keyword-based classification of the prompt's query, which is enough for
// dry runs of the full pipeline.
type Mock struct {
	Respond func(req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func (m *Mock) Complete(ctx context.Context, req Request) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	respond := m.Respond
	if respond == nil {
		respond = keywordResponse
	}
	text, err := respond(req)
	if err != nil {
		return Completion{}, err
	}
	return Completion{
		Text:     text,
		Usage:    Usage{InputTokens: int64(len(req.User) / 4), OutputTokens: int64(len(text) / 4)},
		Provider: ProviderMock,
		Model:    modelOr(req.Model, ProviderMock),
	}, nil
}

// Calls returns the requests seen so far.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

var mockQueryRe = regexp.MustCompile(`Query to classify: "(.*)"`)

var mockRules = []struct {
	keywords []string
	category string
	intent   string
	topic    string
}{
	{[]string{"weather", "forecast", "rain"}, "Weather", "simple_fact", "weather"},
	{[]string{"news", "breaking"}, "News", "news", "other_topic"},
	{[]string{"buy", "price", "cheap", "deal"}, "Shopping", "shopping", "personal_goods"},
	{[]string{"near me", "open now"}, "Local_Category", "local_info", "food_dining"},
	{[]string{"define", "meaning of", "definition"}, "QUICKFACT_Define", "simple_fact", "education"},
	{[]string{"how to", "how do", "why"}, "ANSWERS_General", "research", "other_topic"},
}

func keywordResponse(req Request) (string, error) {
	query := ""
	if m := mockQueryRe.FindStringSubmatch(req.User); m != nil {
		query = strings.ToLower(m[1])
	}
	category, intent, topic, confidence := "OTHER_None_of_These", "research", "other_topic", 0.4
	for _, rule := range mockRules {
		if containsAny(query, rule.keywords) {
			category, intent, topic, confidence = rule.category, rule.intent, rule.topic, 0.8
			break
		}
	}
	out := map[string]any{
		"annotation_schema": map[string]bool{},
		"entity_schema":     map[string][]string{},
		"intent_schema":     map[string]bool{intent: true},
		"topic_schema":      map[string]bool{topic: true},
		"prime_category":    category,
		"research_notes":    "mock classification",
		"confidence_score":  confidence,
	}
	data, err := json.Marshal(out)
	return string(data), err
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
