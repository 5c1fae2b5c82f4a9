// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Persona is a named block of free-form prompt text.
type Persona struct {
	// Name is the filename stem, used verbatim.
	Name string `json:"name" yaml:"name"`

	// Content is the raw file content.
	Content string `json:"content" yaml:"content"`
}

// PersonaEntry is a directory listing record for a stored persona.
type PersonaEntry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Category groups personas by the numeric prefix of their name
// (e.g. "410-llm-engineer" is ai_data).
type Category string

const (
	CategoryEngineering        Category = "engineering"
	CategoryDesignCreative     Category = "design_creative"
	CategoryBusinessLeadership Category = "business_leadership"
	CategoryAIData             Category = "ai_data"
	CategoryTestingQA          Category = "testing_qa"
	CategoryEducation          Category = "education"
	CategoryHealthcare         Category = "healthcare"
	CategoryOther              Category = "other"
)

// Section is a "## " delimited part of a persona profile.
type Section struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Chunk is a searchable slice of a persona section.
type Chunk struct {
	// ID is "<persona>-NNN", stable for unchanged content.
	ID string `json:"id" yaml:"id"`

	// Persona is the name of the source persona.
	Persona string `json:"persona" yaml:"persona"`

	// Section is the title of the section the chunk came from.
	Section string `json:"section" yaml:"section"`

	Content string `json:"content" yaml:"content"`

	// Seq orders chunks within a persona.
	Seq int `json:"seq" yaml:"seq"`
}
