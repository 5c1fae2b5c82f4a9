// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/persona-mcp/pkg/types"
)

const (
	// DefaultChunkSize is the maximum chunk length in bytes.
	DefaultChunkSize = 1500

	overviewTitle  = "Overview"
	descriptionMax = 500
)

// Profile is a persona split into its headed sections.
type Profile struct {
	Name        string          `json:"name" yaml:"name"`
	Title       string          `json:"title" yaml:"title"`
	Category    types.Category  `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	Sections    []types.Section `json:"sections" yaml:"sections"`
}

// Parse splits persona content into sections on "## " headings. Text before
// the first heading belongs to an "Overview" section; sections with only
// whitespace are dropped.
func Parse(in types.Persona) Profile {
	name, content := in.Name, in.Content
	p := Profile{
		Name:     name,
		Title:    titleOf(name, content),
		Category: Categorize(name),
	}

	current := types.Section{Title: overviewTitle}
	var body strings.Builder
	flush := func() {
		current.Content = body.String()
		if strings.TrimSpace(current.Content) != "" {
			p.Sections = append(p.Sections, current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = types.Section{Title: strings.TrimSpace(line[3:])}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	if len(p.Sections) > 0 {
		p.Description = truncate(strings.TrimSpace(p.Sections[0].Content), descriptionMax)
	}
	return p
}

// titleOf returns the first "# " heading without a trailing parenthetical,
// or name when there is none.
func titleOf(name, content string) string {
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		title := strings.TrimSpace(line[2:])
		if i := strings.Index(title, "("); i >= 0 {
			title = strings.TrimSpace(title[:i])
		}
		if title != "" {
			return title
		}
	}
	return name
}

// Categorize derives a category from the numeric prefix of a persona name,
// e.g. "410-llm-engineer" is ai_data.
func Categorize(name string) types.Category {
	prefix, _, _ := strings.Cut(name, "-")
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return types.CategoryOther
	}
	switch {
	case n >= 100 && n < 200:
		return types.CategoryEngineering
	case n >= 200 && n < 300:
		return types.CategoryDesignCreative
	case n >= 300 && n < 400:
		return types.CategoryBusinessLeadership
	case n >= 400 && n < 500:
		return types.CategoryAIData
	case n >= 500 && n < 600:
		return types.CategoryTestingQA
	case n >= 600 && n < 700:
		return types.CategoryEducation
	case n >= 700 && n < 800:
		return types.CategoryHealthcare
	}
	return types.CategoryOther
}

// ChunkProfile splits each section into chunks of at most maxSize bytes. Large
// sections are split on blank-line paragraph boundaries; a single paragraph
// longer than maxSize becomes its own chunk.
func ChunkProfile(p Profile, maxSize int) []types.Chunk {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}

	var chunks []types.Chunk
	emit := func(section, content string) {
		seq := len(chunks)
		chunks = append(chunks, types.Chunk{
			ID:      fmt.Sprintf("%s-%03d", p.Name, seq),
			Persona: p.Name,
			Section: section,
			Content: content,
			Seq:     seq,
		})
	}

	for _, sec := range p.Sections {
		content := strings.TrimSpace(sec.Content)
		if content == "" {
			continue
		}
		if len(content) <= maxSize {
			emit(sec.Title, content)
			continue
		}

		var current string
		for _, para := range strings.Split(content, "\n\n") {
			if current != "" && len(current)+len(para) > maxSize {
				emit(sec.Title, strings.TrimSpace(current))
				current = para
				continue
			}
			if current == "" {
				current = para
			} else {
				current += "\n\n" + para
			}
		}
		if strings.TrimSpace(current) != "" {
			emit(sec.Title, strings.TrimSpace(current))
		}
	}
	return chunks
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
