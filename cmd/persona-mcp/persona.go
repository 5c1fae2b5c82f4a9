// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/persona-mcp/internal/resource"
	"github.com/pdiddy/persona-mcp/internal/router"
)

// The persona commands run the same requests as the MCP tools, so the
// shell and MCP clients see identical messages.

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved personas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, router.ListRequest{})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a persona's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, router.ReadRequest{URI: resource.URI(args[0])})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a persona from a file or stdin",
	Long: `Save writes a persona's content, read from --file or standard input.
An existing persona with the same name is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRequest(cmd, router.DeleteRequest{Name: args[0]})
	},
}

func runSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	file, _ := cmd.Flags().GetString("file")

	var content []byte
	var err error
	if file != "" {
		content, err = os.ReadFile(file)
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading persona content: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := openStore(cfg)

	var req router.Request = router.CreateRequest{Name: name, Content: string(content)}
	if _, err := os.Stat(store.Path(name)); err == nil {
		req = router.UpdateRequest{Name: name, Content: string(content)}
	}
	return runRequest(cmd, req)
}

// runRequest handles req against the configured store and prints the
// response text. Error responses become command errors.
func runRequest(cmd *cobra.Command, req router.Request) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := openStore(cfg)
	r := router.New(store, resource.NewExposer(store), router.WithLogger(logger))

	resp, err := r.Handle(cmd.Context(), req)
	if err != nil {
		return err
	}
	if resp.IsError {
		return errors.New(strings.TrimPrefix(resp.Text, "Error: "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, resp.Text)
	if !strings.HasSuffix(resp.Text, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func init() {
	saveCmd.Flags().StringP("file", "f", "", "read content from file instead of stdin")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
}
