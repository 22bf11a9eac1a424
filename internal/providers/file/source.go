package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"excursion-catalog/internal/domain"
)

// Source reads the catalog document from disk, e.g. the output of
// the extract command.
type Source struct {
	Path string
}

func New(path string) *Source { return &Source{Path: path} }

func (s *Source) Name() string { return "file" }

func (s *Source) Fetch(ctx context.Context) (domain.CatalogDocument, error) {
	var doc domain.CatalogDocument
	if err := ctx.Err(); err != nil {
		return doc, err
	}

	b, err := os.ReadFile(s.Path)
	if err != nil {
		return doc, fmt.Errorf("file: read %s: %w", s.Path, err)
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.CatalogDocument{}, fmt.Errorf("file: decode %s: %w", s.Path, err)
	}
	return doc, nil
}

// Write stores doc at path as indented JSON.
func Write(path string, doc any) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("file: write %s: %w", path, err)
	}
	return nil
}
