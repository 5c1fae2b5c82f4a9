// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operation names a request the router understands.
type Operation string

const (
	OpCreate Operation = "create_persona"
	OpUpdate Operation = "update_persona"
	OpDelete Operation = "delete_persona"
	OpList   Operation = "list_personas"
	OpRead   Operation = "read_persona"
	OpSearch Operation = "search_personas"
)

var (
	// ErrUnknownOperation reports a request name the router does not handle.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMissingField reports a request without a required argument.
	ErrMissingField = errors.New("missing required field")
)

// Request is one of the decoded operation payloads below.
type Request interface {
	Operation() Operation
}

// CreateRequest saves a new persona.
type CreateRequest struct {
	Name    string `json:"name" jsonschema:"persona name, used verbatim as the file name"`
	Content string `json:"content" jsonschema:"persona profile text"`
}

// UpdateRequest overwrites an existing persona.
type UpdateRequest struct {
	Name    string `json:"name" jsonschema:"name of the persona to update"`
	Content string `json:"content" jsonschema:"new persona profile text"`
}

// DeleteRequest removes a persona.
type DeleteRequest struct {
	Name string `json:"name" jsonschema:"name of the persona to delete"`
}

// ListRequest enumerates stored personas. It takes no arguments.
type ListRequest struct{}

// ReadRequest fetches the persona addressed by a persona:// URI.
type ReadRequest struct {
	URI string `json:"uri" jsonschema:"persona resource URI, e.g. persona://default"`
}

// SearchRequest runs a keyword search over the persona index.
type SearchRequest struct {
	Query   string `json:"query,omitempty" jsonschema:"keywords matched against section titles and text"`
	Persona string `json:"persona,omitempty" jsonschema:"restrict results to one persona"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

func (CreateRequest) Operation() Operation { return OpCreate }
func (UpdateRequest) Operation() Operation { return OpUpdate }
func (DeleteRequest) Operation() Operation { return OpDelete }
func (ListRequest) Operation() Operation   { return OpList }
func (ReadRequest) Operation() Operation   { return OpRead }
func (SearchRequest) Operation() Operation { return OpSearch }

// namedArgs captures presence of the persona fields. A nil pointer means
// the field was absent from the payload.
type namedArgs struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

// Decode validates the raw arguments of op and returns the typed request.
// Empty or null arguments decode as an empty object.
func Decode(op string, args json.RawMessage) (Request, error) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	switch Operation(op) {
	case OpCreate, OpUpdate:
		var a namedArgs
		if err := unmarshal(op, trimmed, &a); err != nil {
			return nil, err
		}
		if err := requireName(op, a.Name); err != nil {
			return nil, err
		}
		if a.Content == nil {
			return nil, fmt.Errorf("%s: %w: content", op, ErrMissingField)
		}
		if Operation(op) == OpCreate {
			return CreateRequest{Name: *a.Name, Content: *a.Content}, nil
		}
		return UpdateRequest{Name: *a.Name, Content: *a.Content}, nil

	case OpDelete:
		var a namedArgs
		if err := unmarshal(op, trimmed, &a); err != nil {
			return nil, err
		}
		if err := requireName(op, a.Name); err != nil {
			return nil, err
		}
		return DeleteRequest{Name: *a.Name}, nil

	case OpList:
		var r ListRequest
		if err := unmarshal(op, trimmed, &r); err != nil {
			return nil, err
		}
		return r, nil

	case OpRead:
		var r ReadRequest
		if err := unmarshal(op, trimmed, &r); err != nil {
			return nil, err
		}
		if r.URI == "" {
			return nil, fmt.Errorf("%s: %w: uri", op, ErrMissingField)
		}
		return r, nil

	case OpSearch:
		var r SearchRequest
		if err := unmarshal(op, trimmed, &r); err != nil {
			return nil, err
		}
		if strings.TrimSpace(r.Query) == "" && r.Persona == "" {
			return nil, fmt.Errorf("%s: %w: query or persona", op, ErrMissingField)
		}
		return r, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
}

func unmarshal(op string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: decoding arguments: %w", op, err)
	}
	return nil
}

func requireName(op string, name *string) error {
	if name == nil || *name == "" {
		return fmt.Errorf("%s: %w: name", op, ErrMissingField)
	}
	return nil
}
