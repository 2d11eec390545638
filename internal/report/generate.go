package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"qcl/internal/domain"
)

const (
	DetailedFile = "detailed_classifications.csv"
	PrimeFile    = "prime_category_report.csv"
	MetaFile     = "meta_aggregation_report.csv"
)

// Files holds the paths written by Generate.
type Files struct {
	Detailed string
	Prime    string
	Meta     string
}

// Generate writes the three reports for batch into dir.
func Generate(batch domain.Batch, dir string) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create report dir: %w", err)
	}
	files := Files{
		Detailed: filepath.Join(dir, DetailedFile),
		Prime:    filepath.Join(dir, PrimeFile),
		Meta:     filepath.Join(dir, MetaFile),
	}
	tables := []struct {
		path  string
		table Table
	}{
		{files.Detailed, Detailed(batch.Results)},
		{files.Prime, PrimeTable(Prime(batch.Results))},
		{files.Meta, MetaTable(Meta(batch.Results))},
	}
	for _, t := range tables {
		if err := WriteCSV(t.path, t.table); err != nil {
			return Files{}, err
		}
	}
	return files, nil
}

// WriteCSV writes t to path, replacing any existing file.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
