// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/persona-mcp/internal/knowledge"
	"github.com/pdiddy/persona-mcp/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve personas over MCP (stdio or streamable HTTP)",
	Long: `Serve exposes the persona directory to MCP clients. Tools create,
update, delete, and list personas; each persona is also readable as a
persona://<name> resource. With --search the search_personas tool is
registered and backed by the keyword index.

The resource list follows the directory: files added or removed outside
the server appear on the next resources/list, and with --watch clients
are notified as soon as the change happens.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := openStore(cfg)
	opts := mcpserver.Options{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
		Logger:  logger,
	}

	if cfg.Index.Enabled {
		idx, err := knowledge.Open(cfg.Index, store)
		if err != nil {
			return err
		}
		defer idx.Close()
		opts.Searcher = idx
	}

	srv, err := mcpserver.New(store, opts)
	if err != nil {
		return err
	}

	logger.Info("starting persona server",
		zap.String("dir", store.Dir()),
		zap.String("transport", string(cfg.Server.Transport)),
		zap.Bool("watch", cfg.Server.Watch),
		zap.Bool("search", cfg.Index.Enabled),
	)
	return srv.Run(cmd.Context(), cfg.Server)
}

func init() {
	serveCmd.Flags().String("transport", "stdio", "MCP transport: stdio or http")
	serveCmd.Flags().String("http-addr", mcpserver.DefaultHTTPAddr, "listen address for the http transport")
	serveCmd.Flags().Bool("watch", true, "notify clients when persona files change on disk")
	serveCmd.Flags().Bool("search", false, "register the search_personas tool")

	_ = viper.BindPFlag("server.transport", serveCmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("server.http_addr", serveCmd.Flags().Lookup("http-addr"))
	_ = viper.BindPFlag("server.watch", serveCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("index.enabled", serveCmd.Flags().Lookup("search"))

	rootCmd.AddCommand(serveCmd)
}
