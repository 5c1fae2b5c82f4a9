// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is a whitespace-separated list of keywords, matched
	// case-insensitively against section titles and chunk content.
	Query string

	// Persona restricts results to one persona.
	Persona string

	// MaxResults limits result count. Zero uses the index default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return strings.TrimSpace(q.Query) == "" && q.Persona == ""
}

// SearchResult is a chunk with its persona metadata and match score.
type SearchResult struct {
	types.Chunk
	Title    string         `json:"title" yaml:"title"`
	Category types.Category `json:"category" yaml:"category"`
	Score    int            `json:"score" yaml:"score"`
}

// Search returns chunks matching opts, ranked by the number of keyword
// occurrences (highest first, ties by chunk ID). A persona-only query
// returns that persona's chunks in order.
func (idx *Index) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	if opts.IsEmpty() {
		return nil, fmt.Errorf("query or persona filter required")
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = idx.maxResults
	}
	return idx.query(ctx, opts, maxResults)
}

func (idx *Index) query(ctx context.Context, opts QueryOptions, limit int) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(opts.Query))

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT c.id, c.persona, c.section, c.content, c.seq, p.title, p.category
		FROM chunks c
		JOIN personas p ON p.name = c.persona
		WHERE 1=1`)

	if opts.Persona != "" {
		qb.WriteString(` AND c.persona = ?`)
		args = append(args, opts.Persona)
	}

	if len(terms) > 0 {
		clauses := make([]string, 0, len(terms))
		for _, term := range terms {
			clauses = append(clauses, `instr(lower(c.content), ?) > 0 OR instr(lower(c.section), ?) > 0`)
			args = append(args, term, term)
		}
		qb.WriteString(` AND (` + strings.Join(clauses, " OR ") + `)`)
	}

	qb.WriteString(` ORDER BY c.persona, c.seq`)

	rows, err := idx.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r        SearchResult
			section  sql.NullString
			title    sql.NullString
			category sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Persona, &section, &r.Content, &r.Seq, &title, &category); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Section = section.String
		r.Title = title.String
		r.Category = types.Category(category.String)

		if len(terms) > 0 {
			r.Score = score(r.Section, r.Content, terms)
			if r.Score == 0 {
				continue
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(terms) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Score != results[j].Score {
				return results[i].Score > results[j].Score
			}
			return results[i].ID < results[j].ID
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func score(section, content string, terms []string) int {
	haystack := strings.ToLower(section + "\n" + content)
	n := 0
	for _, term := range terms {
		n += strings.Count(haystack, term)
	}
	return n
}

// PersonaSummary describes one indexed persona.
type PersonaSummary struct {
	Name        string         `json:"name" yaml:"name"`
	Title       string         `json:"title" yaml:"title"`
	Category    types.Category `json:"category" yaml:"category"`
	Description string         `json:"description" yaml:"description"`
	Chunks      int            `json:"chunks" yaml:"chunks"`
}

// Personas lists indexed personas by name.
func (idx *Index) Personas(ctx context.Context) ([]PersonaSummary, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT p.name, p.title, p.category, p.description,
			(SELECT count(*) FROM chunks c WHERE c.persona = p.name)
		FROM personas p ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}
	defer rows.Close()

	var out []PersonaSummary
	for rows.Next() {
		var ps PersonaSummary
		var title, category, description sql.NullString
		if err := rows.Scan(&ps.Name, &title, &category, &description, &ps.Chunks); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ps.Title = title.String
		ps.Category = types.Category(category.String)
		ps.Description = description.String
		out = append(out, ps)
	}
	return out, rows.Err()
}

// Stats holds index totals.
type Stats struct {
	Personas int `json:"personas" yaml:"personas"`
	Chunks   int `json:"chunks" yaml:"chunks"`
}

// Stats returns the number of indexed personas and chunks.
func (idx *Index) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := idx.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM personas), (SELECT count(*) FROM chunks)`,
	).Scan(&s.Personas, &s.Chunks)
	if err != nil {
		return Stats{}, fmt.Errorf("reading index stats: %w", err)
	}
	return s, nil
}
