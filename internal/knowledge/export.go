// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a chunk with persona metadata for export.
type ExportEntry struct {
	ID       string `json:"id" yaml:"id"`
	Persona  string `json:"persona" yaml:"persona"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	Section  string `json:"section" yaml:"section"`
	Content  string `json:"content" yaml:"content"`
}

const exportLimit = 100000

// ExportYAML writes the index (or the subset matching opts) to path.
func (idx *Index) ExportYAML(ctx context.Context, path string, opts QueryOptions) error {
	entries, err := idx.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(path, data)
}

// ExportJSON writes the index (or the subset matching opts) to path.
func (idx *Index) ExportJSON(ctx context.Context, path string, opts QueryOptions) error {
	entries, err := idx.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(path, data)
}

func (idx *Index) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	results, err := idx.query(ctx, opts, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:       r.ID,
			Persona:  r.Persona,
			Title:    r.Title,
			Category: string(r.Category),
			Section:  r.Section,
			Content:  r.Content,
		}
	}
	return entries, nil
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
