// Package batchfile persists classification batches as JSON files.
package batchfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"qcl/internal/domain"
)

var ErrMalformed = errors.New("malformed batch file")

// Save writes b to path through a temp file and rename, so readers never
// see a partial batch.
func Save(path string, b domain.Batch) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create batch dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp batch: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp batch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp batch: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename temp batch: %w", err)
	}
	return nil
}

// Load reads a batch written by Save or by earlier versions of the tool.
func Load(path string) (domain.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("read batch: %w", err)
	}
	var b domain.Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Batch{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if b.Results == nil {
		b.Results = []domain.Result{}
	}
	return b, nil
}
