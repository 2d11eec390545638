package guidelines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Corpus is the guideline text of one run. It is built once and only read.
type Corpus struct {
	Source      string
	FullText    string
	Chunks      []string
	TotalLength int
}

// NewCorpus chunks text and wraps it with its source identifier.
func NewCorpus(source, text string, size, overlap int) (*Corpus, error) {
	chunks, err := Chunk(text, size, overlap)
	if err != nil {
		return nil, err
	}
	return &Corpus{
		Source:      source,
		FullText:    text,
		Chunks:      chunks,
		TotalLength: len(text),
	}, nil
}

// Load reads a PDF or plain-text guideline document and chunks it.
func Load(ctx context.Context, path string, size, overlap int) (*Corpus, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(ctx, path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load guidelines %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("load guidelines %s: %w", path, ErrNoText)
	}
	return NewCorpus(path, text, size, overlap)
}

func extractPDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
