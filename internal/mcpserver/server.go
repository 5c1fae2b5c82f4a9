// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver serves the persona store over the Model Context
// Protocol: persona tools, persona:// resources, and a resource list kept
// in sync with the persona directory.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pdiddy/persona-mcp/internal/persona"
	"github.com/pdiddy/persona-mcp/internal/resource"
	"github.com/pdiddy/persona-mcp/internal/router"
)

const (
	// DefaultName identifies the server to MCP clients.
	DefaultName = "persona-mcp"

	methodListResources = "resources/list"
	methodReadResource  = "resources/read"
)

// Options configures a Server.
type Options struct {
	Name    string
	Version string

	// Searcher enables the search_personas tool when non-nil.
	Searcher router.Searcher

	Logger *zap.Logger
}

// Server wires the persona router to an MCP server.
type Server struct {
	mcp      *mcp.Server
	store    *persona.Store
	exposer  *resource.Exposer
	router   *router.Router
	logger   *zap.Logger
	template *mcp.ResourceTemplate

	mu        sync.Mutex
	resources []resource.Resource
}

type tool struct {
	op          router.Operation
	description string
	schema      func() (*jsonschema.Schema, error)
}

func schemaFor[T any]() func() (*jsonschema.Schema, error) {
	return func() (*jsonschema.Schema, error) {
		return jsonschema.For[T](nil)
	}
}

var personaTools = []tool{
	{router.OpCreate, "Create a new persona profile", schemaFor[router.CreateRequest]()},
	{router.OpUpdate, "Update an existing persona profile", schemaFor[router.UpdateRequest]()},
	{router.OpDelete, "Delete a persona profile", schemaFor[router.DeleteRequest]()},
	{router.OpList, "List all saved persona profiles", schemaFor[router.ListRequest]()},
}

var searchTool = tool{
	router.OpSearch,
	"Search persona profiles by keyword, optionally within one persona",
	schemaFor[router.SearchRequest](),
}

// New builds the MCP server for store. Tools and the persona resource
// template are registered with the SDK. Resource listing and reads are
// answered from the persona directory by a receiving middleware, so every
// persona name is reachable whether or not its URI is a valid URL.
func New(store *persona.Store, opts Options) (*Server, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		store:   store,
		exposer: resource.NewExposer(store),
		logger:  opts.Logger,
		template: &mcp.ResourceTemplate{
			Name:        "persona",
			Description: "Persona profile by name",
			URITemplate: resource.Template,
			MIMEType:    resource.MIMEType,
		},
	}

	routerOpts := []router.Option{
		router.WithLogger(opts.Logger),
		router.WithOnChange(func(context.Context) { _ = s.Sync() }),
	}
	if opts.Searcher != nil {
		routerOpts = append(routerOpts, router.WithSearcher(opts.Searcher))
	}
	s.router = router.New(store, s.exposer, routerOpts...)

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil)

	tools := personaTools
	if s.router.SearchEnabled() {
		tools = append(tools[:len(tools):len(tools)], searchTool)
	}
	for _, t := range tools {
		schema, err := t.schema()
		if err != nil {
			return nil, fmt.Errorf("building schema for %s: %w", t.op, err)
		}
		s.mcp.AddTool(&mcp.Tool{
			Name:        string(t.op),
			Description: t.description,
			InputSchema: schema,
		}, s.callTool)
	}

	s.mcp.AddResourceTemplate(s.template, s.readResource)
	s.mcp.AddReceivingMiddleware(s.resourceMiddleware)

	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Router returns the request router behind the tools.
func (s *Server) Router() *router.Router {
	return s.router
}

// Sync refreshes the persona resource list from the directory and notifies
// connected clients when it changed. On error the previous list is kept.
func (s *Server) Sync() error {
	resources, err := s.exposer.List()
	if err != nil {
		s.logger.Warn("syncing persona resources", zap.Error(err))
		return err
	}

	s.mu.Lock()
	changed := !sameURIs(s.resources, resources)
	s.resources = resources
	s.mu.Unlock()

	if changed {
		// Replacing the template makes the SDK send
		// notifications/resources/list_changed to every session.
		s.mcp.AddResourceTemplate(s.template, s.readResource)
		s.logger.Debug("persona resources synced", zap.Int("total", len(resources)))
	}
	return nil
}

func sameURIs(a, b []resource.Resource) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].URI != b[i].URI {
			return false
		}
	}
	return true
}

// listResources syncs and returns the current resource list. A failed sync
// serves the previous list.
func (s *Server) listResources() *mcp.ListResourcesResult {
	_ = s.Sync()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mcp.Resource, len(s.resources))
	for i, r := range s.resources {
		out[i] = &mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}
	}
	return &mcp.ListResourcesResult{Resources: out}
}

func (s *Server) resourceMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		switch method {
		case methodListResources:
			return s.listResources(), nil
		case methodReadResource:
			if rr, ok := req.(*mcp.ReadResourceRequest); ok && rr.Params != nil {
				res, err := s.readResource(ctx, rr)
				if err != nil {
					return nil, err
				}
				return res, nil
			}
		}
		return next(ctx, method, req)
	}
}

func (s *Server) callTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := s.router.Dispatch(ctx, req.Params.Name, req.Params.Arguments)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: resp.Text}},
		IsError: resp.IsError,
	}, nil
}

func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	resp, err := s.router.Handle(ctx, router.ReadRequest{URI: uri})
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrInvalidIdentifier), errors.Is(err, persona.ErrInvalidName):
			return nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
		case errors.Is(err, persona.ErrNotFound):
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      resp.Contents.URI,
			MIMEType: resp.Contents.MIMEType,
			Text:     resp.Contents.Text,
		}},
	}, nil
}
