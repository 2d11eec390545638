package domain

import (
	"regexp"
	"strings"
)

// Query is one search query as loaded from the input table.
type Query struct {
	Text      string `json:"text"`
	Index     int    `json:"index"`
	Slug      string `json:"slug"`
	WordCount int    `json:"word_count"`
}

var (
	slugDropRe     = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// NewQuery trims text and derives the slug and word count.
func NewQuery(text string, index int) Query {
	text = strings.TrimSpace(text)
	return Query{
		Text:      text,
		Index:     index,
		Slug:      Slugify(text),
		WordCount: len(strings.Fields(text)),
	}
}

// Slugify lowercases s, drops punctuation and joins words with underscores.
func Slugify(s string) string {
	s = slugDropRe.ReplaceAllString(strings.ToLower(s), "")
	s = slugCollapseRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
