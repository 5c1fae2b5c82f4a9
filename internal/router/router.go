// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package router decodes named persona operations, runs them against the
// persona store, and formats the human-readable responses returned to MCP
// clients.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/persona-mcp/internal/knowledge"
	"github.com/pdiddy/persona-mcp/internal/resource"
)

const snippetMax = 200

// ErrSearchDisabled reports a search request on a router without an index.
var ErrSearchDisabled = errors.New("persona search is not enabled")

// Store is the persona storage the router writes to.
type Store interface {
	List() ([]string, error)
	Save(name, content string) error
	Delete(name string) error
	Path(name string) string
}

// Reader resolves persona resource URIs.
type Reader interface {
	Read(uri string) (resource.Contents, error)
}

// Searcher runs keyword queries over the persona index. Refresh is called
// before each search so results follow the persona directory.
type Searcher interface {
	Refresh(ctx context.Context) error
	Search(ctx context.Context, opts knowledge.QueryOptions) ([]knowledge.SearchResult, error)
}

// Response is the outcome of a handled request. Tool operations report
// failures with IsError set; Contents is only set for reads.
type Response struct {
	Text     string
	IsError  bool
	Contents *resource.Contents
}

// Option configures a Router.
type Option func(*Router)

// WithSearcher enables search_personas.
func WithSearcher(s Searcher) Option {
	return func(r *Router) { r.searcher = s }
}

// WithOnChange registers fn to run after every successful create, update,
// or delete.
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(r *Router) { r.onChange = fn }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// Router dispatches decoded requests. It holds no persona state.
type Router struct {
	store    Store
	reader   Reader
	searcher Searcher
	onChange func(ctx context.Context)
	logger   *zap.Logger
}

// New returns a Router over store that serves reads through reader.
func New(store Store, reader Reader, opts ...Option) *Router {
	r := &Router{
		store:  store,
		reader: reader,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchEnabled reports whether a Searcher is configured.
func (r *Router) SearchEnabled() bool {
	return r.searcher != nil
}

// Dispatch decodes and handles a tool call. It never returns a Go error:
// unknown operations, invalid arguments, and failed operations all become
// error responses.
func (r *Router) Dispatch(ctx context.Context, op string, args json.RawMessage) Response {
	req, err := Decode(op, args)
	if err != nil {
		r.logger.Warn("rejected request", zap.String("operation", op), zap.Error(err))
		return errorResponse(err)
	}
	resp, err := r.Handle(ctx, req)
	if err != nil {
		return errorResponse(err)
	}
	return resp
}

// Handle runs req. Create, update, delete, list, and search failures are
// returned as error responses with a nil error; read failures are returned
// as errors.
func (r *Router) Handle(ctx context.Context, req Request) (Response, error) {
	r.logger.Debug("handling request", zap.String("operation", string(req.Operation())))

	switch req := req.(type) {
	case CreateRequest:
		if err := r.store.Save(req.Name, req.Content); err != nil {
			return r.failed(req, err), nil
		}
		r.changed(ctx)
		return Response{Text: fmt.Sprintf("Persona %q created.\nLocation: %s", req.Name, r.store.Path(req.Name))}, nil

	case UpdateRequest:
		if err := r.store.Save(req.Name, req.Content); err != nil {
			return r.failed(req, err), nil
		}
		r.changed(ctx)
		return Response{Text: fmt.Sprintf("Persona %q updated.", req.Name)}, nil

	case DeleteRequest:
		if err := r.store.Delete(req.Name); err != nil {
			return r.failed(req, err), nil
		}
		r.changed(ctx)
		return Response{Text: fmt.Sprintf("Persona %q deleted.", req.Name)}, nil

	case ListRequest:
		names, err := r.store.List()
		if err != nil {
			return r.failed(req, err), nil
		}
		return Response{Text: formatList(names)}, nil

	case SearchRequest:
		results, err := r.search(ctx, req)
		if err != nil {
			return r.failed(req, err), nil
		}
		return Response{Text: formatResults(results)}, nil

	case ReadRequest:
		contents, err := r.reader.Read(req.URI)
		if err != nil {
			return Response{}, err
		}
		return Response{Text: contents.Text, Contents: &contents}, nil
	}

	return Response{}, fmt.Errorf("%w: %T", ErrUnknownOperation, req)
}

func (r *Router) search(ctx context.Context, req SearchRequest) ([]knowledge.SearchResult, error) {
	if r.searcher == nil {
		return nil, ErrSearchDisabled
	}
	if err := r.searcher.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refreshing index: %w", err)
	}
	return r.searcher.Search(ctx, knowledge.QueryOptions{
		Query:      req.Query,
		Persona:    req.Persona,
		MaxResults: req.Limit,
	})
}

func (r *Router) changed(ctx context.Context) {
	if r.onChange != nil {
		r.onChange(ctx)
	}
}

func (r *Router) failed(req Request, err error) Response {
	r.logger.Warn("request failed", zap.String("operation", string(req.Operation())), zap.Error(err))
	return errorResponse(err)
}

func errorResponse(err error) Response {
	return Response{Text: "Error: " + err.Error(), IsError: true}
}

func formatList(names []string) string {
	if len(names) == 0 {
		return "No personas saved."
	}
	var b strings.Builder
	b.WriteString("Available personas:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	fmt.Fprintf(&b, "\nUsage: reference a persona as @persona:%s", names[0])
	return b.String()
}

func formatResults(results []knowledge.SearchResult) string {
	if len(results) == 0 {
		return "No matches found."
	}
	lines := make([]string, len(results))
	for i, res := range results {
		lines[i] = fmt.Sprintf("- %s § %s (score %d)\n  %s", res.Persona, res.Section, res.Score, snippet(res.Content))
	}
	return strings.Join(lines, "\n")
}

// snippet collapses whitespace and cuts s to snippetMax bytes.
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= snippetMax {
		return s
	}
	n := snippetMax
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
