// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the persona-mcp CLI. Run without a
// subcommand it serves the persona store to an MCP client over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/persona-mcp/internal/knowledge"
	"github.com/pdiddy/persona-mcp/internal/mcpserver"
	"github.com/pdiddy/persona-mcp/internal/persona"
	"github.com/pdiddy/persona-mcp/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger writes structured logs to stderr; stdout belongs to the stdio
// transport and command output.
var logger = zap.NewNop()

// rootCmd is the base command for the persona-mcp CLI.
var rootCmd = &cobra.Command{
	Use:   "persona-mcp",
	Short: "Persona profile store served over the Model Context Protocol",
	Long: `persona-mcp keeps reusable persona profiles as plain text files in a
directory (default ~/.persona) and serves them to MCP clients as tools
(create, update, delete, list, search) and persona:// resources.

Run without a subcommand to serve over stdio, which is what MCP clients
expect when they launch the binary. The other subcommands manage personas,
the search index, and documentation conversion from the shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./persona-mcp.yaml or ~/.config/persona-mcp/persona-mcp.yaml)")
	rootCmd.PersistentFlags().String("dir", "", "persona directory (default: ~/.persona)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("extension", types.DefaultExtension)
	viper.SetDefault("server.transport", string(types.TransportStdio))
	viper.SetDefault("server.http_addr", mcpserver.DefaultHTTPAddr)
	viper.SetDefault("server.watch", true)
	viper.SetDefault("index.enabled", false)
	viper.SetDefault("index.max_results", 5)
	viper.SetDefault("index.chunk_size", knowledge.DefaultChunkSize)
	viper.SetDefault("convert.backend", string(types.BackendNative))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("persona-mcp")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "persona-mcp"))
		}
	}

	viper.SetEnvPrefix("PERSONA_MCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig collects flags, environment, and config file values.
func loadConfig() (types.Config, error) {
	dir, err := expandHome(viper.GetString("dir"))
	if err != nil {
		return types.Config{}, err
	}
	if dir == "" {
		if dir, err = persona.DefaultDir(); err != nil {
			return types.Config{}, err
		}
	}

	indexPath, err := expandHome(viper.GetString("index.path"))
	if err != nil {
		return types.Config{}, err
	}
	if indexPath == "" {
		indexPath = knowledge.DefaultPath(dir)
	}

	return types.Config{
		Persona: types.PersonaConfig{
			Dir:       dir,
			Extension: viper.GetString("extension"),
		},
		Server: types.ServerConfig{
			Name:      mcpserver.DefaultName,
			Version:   version,
			Transport: types.TransportKind(viper.GetString("server.transport")),
			HTTPAddr:  viper.GetString("server.http_addr"),
			Watch:     viper.GetBool("server.watch"),
		},
		Index: types.IndexConfig{
			Enabled:    viper.GetBool("index.enabled"),
			Path:       indexPath,
			MaxResults: viper.GetInt("index.max_results"),
			ChunkSize:  viper.GetInt("index.chunk_size"),
		},
		Conversion: types.ConversionConfig{
			Backend: types.ConversionBackend(viper.GetString("convert.backend")),
			OutDir:  viper.GetString("convert.out_dir"),
		},
	}, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// openStore returns the configured persona store. A directory that cannot
// be created is logged; individual operations then report their own errors.
func openStore(cfg types.Config) *persona.Store {
	store := persona.NewStore(cfg.Persona)
	if err := store.Init(); err != nil {
		logger.Warn("persona directory unavailable", zap.String("dir", store.Dir()), zap.Error(err))
	}
	return store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
