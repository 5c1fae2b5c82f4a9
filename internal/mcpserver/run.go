// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/persona-mcp/internal/watch"
	"github.com/pdiddy/persona-mcp/pkg/types"
)

const (
	// DefaultHTTPAddr binds the HTTP transport to localhost only.
	DefaultHTTPAddr = "localhost:8081"

	shutdownTimeout = 5 * time.Second
)

// Run serves MCP on the configured transport until ctx is cancelled.
// With cfg.Watch set, persona directory changes re-sync the resource list
// while the server runs.
func (s *Server) Run(ctx context.Context, cfg types.ServerConfig) error {
	if cfg.Transport == "" {
		cfg.Transport = types.TransportStdio
	}

	var serve func(context.Context) error
	switch cfg.Transport {
	case types.TransportStdio:
		serve = func(ctx context.Context) error {
			return s.Serve(ctx, &mcp.StdioTransport{})
		}
	case types.TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = DefaultHTTPAddr
		}
		serve = func(ctx context.Context) error {
			return s.ServeHTTP(ctx, addr)
		}
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	if err := s.Sync(); err != nil {
		s.logger.Warn("initial resource sync failed", zap.Error(err))
	}

	if !cfg.Watch {
		return serve(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	g.Go(func() error {
		defer stop()
		return serve(runCtx)
	})
	g.Go(func() error {
		w := watch.New(s.store.Dir(), s.store.Extension(), func() { _ = s.Sync() }, s.logger)
		if err := w.Run(runCtx); err != nil {
			// The server keeps running without live updates.
			s.logger.Warn("persona directory watch disabled", zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}

// Serve runs the MCP server over transport until ctx is cancelled or the
// client disconnects. Cancellation is not an error.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("serving MCP", zap.String("transport", fmt.Sprintf("%T", transport)))
	err := s.mcp.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled, then shuts the listener down.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		<-errCh
		return nil
	}
}
