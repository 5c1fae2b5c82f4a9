// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resource exposes stored personas as read-only addressable
// resources under the persona:// scheme.
package resource

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// Scheme is the URI scheme of persona resources.
	Scheme = "persona"
	// Prefix starts every persona resource URI.
	Prefix = Scheme + "://"
	// MIMEType is the content type of every persona resource.
	MIMEType = "text/plain"
	// Template is the RFC 6570 template matching persona URIs.
	Template = Prefix + "{name}"
)

// ErrInvalidIdentifier reports a URI outside the persona scheme.
var ErrInvalidIdentifier = errors.New("invalid persona URI")

// Source is the persona storage the exposer reads from.
type Source interface {
	List() ([]string, error)
	Read(name string) (string, error)
}

// Resource describes one addressable persona.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mime_type"`
}

// Contents is the result of reading a persona resource.
type Contents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mime_type"`
	Text     string `json:"text"`
}

// Exposer lists and reads persona resources.
type Exposer struct {
	src Source
}

// NewExposer returns an Exposer backed by src.
func NewExposer(src Source) *Exposer {
	return &Exposer{src: src}
}

// List returns one resource per stored persona.
func (e *Exposer) List() ([]Resource, error) {
	names, err := e.src.List()
	if err != nil {
		return nil, fmt.Errorf("listing persona resources: %w", err)
	}
	resources := make([]Resource, len(names))
	for i, name := range names {
		resources[i] = Describe(name)
	}
	return resources, nil
}

// Read returns the content addressed by uri.
func (e *Exposer) Read(uri string) (Contents, error) {
	name, err := ParseURI(uri)
	if err != nil {
		return Contents{}, err
	}
	text, err := e.src.Read(name)
	if err != nil {
		return Contents{}, err
	}
	return Contents{URI: uri, MIMEType: MIMEType, Text: text}, nil
}

// Describe builds the resource record for a persona name.
func Describe(name string) Resource {
	return Resource{
		URI:         URI(name),
		Name:        "Persona: " + name,
		Description: name + " persona profile",
		MIMEType:    MIMEType,
	}
}

// URI returns the resource identifier for a persona name. The name is
// percent-encoded, so "my persona" becomes persona://my%20persona.
func URI(name string) string {
	return Prefix + url.PathEscape(name)
}

// ParseURI extracts the persona name from a persona:// URI. Everything
// after the prefix is the name, percent-decoded.
func ParseURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, Prefix) {
		return "", fmt.Errorf("%w: %q must start with %q", ErrInvalidIdentifier, uri, Prefix)
	}
	name, err := url.PathUnescape(strings.TrimPrefix(uri, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, uri, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: %q has no persona name", ErrInvalidIdentifier, uri)
	}
	return name, nil
}
