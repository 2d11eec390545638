// Package prompt renders the per-query classification request.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"qcl/internal/domain"
	"qcl/internal/taxonomy"
	"strings"
	"text/template"
)

// SystemInstruction is sent as the system message of every request.
const SystemInstruction = "You are an expert query classification analyst. Respond only with valid JSON."

// MaxGuidelineChunks bounds how much guideline text goes into one prompt.
// Only the leading chunks are used; there is no relevance ranking.
const MaxGuidelineChunks = 3

// Request is one rendered completion request.
type Request struct {
	System string
	User   string
}

// Data is what a prompt template can reference.
type Data struct {
	Query          string
	Guidelines     string
	Annotation     []domain.FieldSpec
	Entities       []domain.FieldSpec
	Intents        []domain.FieldSpec
	Topics         []domain.FieldSpec
	CategoryGroups []taxonomy.Group
	CategoryCount  int
	Skeleton       string
}

var funcs = template.FuncMap{"join": strings.Join}

// Builder renders requests from a parsed template.
type Builder struct {
	tmpl *template.Template
}

// New returns a Builder using the built-in template.
func New() *Builder {
	return &Builder{tmpl: template.Must(template.New("classification").Funcs(funcs).Parse(defaultTemplate))}
}

// Parse returns a Builder for a replacement template.
func Parse(text string) (*Builder, error) {
	t, err := template.New("classification").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: t}, nil
}

// FromFile loads a replacement template, or the built-in one when path is empty.
func FromFile(path string) (*Builder, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return Parse(string(data))
}

// Build renders the request for one query. The query is template data, so
// delimiter text inside it is never executed.
func (b *Builder) Build(query string, chunks []string) (Request, error) {
	if len(chunks) > MaxGuidelineChunks {
		chunks = chunks[:MaxGuidelineChunks]
	}
	groups := taxonomy.PromptGroups()
	count := 0
	for _, g := range groups {
		count += len(g.Names)
	}
	data := Data{
		Query:          query,
		Guidelines:     strings.Join(chunks, "\n\n"),
		Annotation:     domain.AnnotationFields(),
		Entities:       domain.EntityFields(),
		Intents:        domain.IntentFields(),
		Topics:         domain.TopicFields(),
		CategoryGroups: groups,
		CategoryCount:  count,
		Skeleton:       skeleton,
	}
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return Request{}, fmt.Errorf("render prompt: %w", err)
	}
	return Request{System: SystemInstruction, User: sb.String()}, nil
}

var skeleton = func() string {
	shape := struct {
		Annotation    domain.AnnotationSchema `json:"annotation_schema"`
		Entities      domain.EntitySchema     `json:"entity_schema"`
		Intent        domain.IntentSchema     `json:"intent_schema"`
		Topic         domain.TopicSchema      `json:"topic_schema"`
		PrimeCategory string                  `json:"prime_category"`
		ResearchNotes string                  `json:"research_notes"`
		Confidence    float64                 `json:"confidence_score"`
	}{
		Entities:      domain.EmptyEntities(),
		PrimeCategory: "EXACT_PRIME_CATEGORY_NAME",
		ResearchNotes: "Brief explanation of classification decisions",
		Confidence:    0.95,
	}
	data, err := json.MarshalIndent(shape, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(data)
}()
