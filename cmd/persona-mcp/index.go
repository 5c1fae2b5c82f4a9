// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/persona-mcp/internal/knowledge"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the persona search index (build, search, list, export)",
	Long: `Index maintains a local SQLite index of persona sections. Profiles are
split on "## " headings into chunks, which keyword search ranks by how
often the query terms occur. The index lives in <dir>/.index/ by default.`,
}

// --- build subcommand ---

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index every persona in the directory",
	Long: `Build parses and chunks each persona into the index. Personas whose
files are unchanged since the last run are skipped, and personas that no
longer exist are removed.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	summary, err := idx.Ingest(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d persona(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var indexSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search persona sections by keyword",
	Long: `Search refreshes the index and returns the chunks that best match the
query, optionally restricted to one persona with --persona.`,
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --persona")
	}

	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Refresh(cmd.Context()); err != nil {
		return err
	}
	results, err := idx.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd, results, jsonOutput)
}

func formatSearchOutput(cmd *cobra.Command, results []knowledge.SearchResult, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-5s  %-24s  %-20s  %s\n", "Rank", "Score", "Persona", "Section", "Content")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for i, r := range results {
		fmt.Fprintf(out, "%-4d  %-5d  %-24s  %-20s  %s\n",
			i+1, r.Score, clip(r.Persona, 24), clip(r.Section, 20), clip(strings.Join(strings.Fields(r.Content), " "), 40))
	}
	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

// --- list subcommand ---

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed personas with their category and chunk count",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

func runIndexList(cmd *cobra.Command, args []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	personas, err := idx.Personas(cmd.Context())
	if err != nil {
		return err
	}
	stats, err := idx.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-24s  %-20s  %-6s  %s\n", "Persona", "Category", "Chunks", "Title")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, p := range personas {
		fmt.Fprintf(out, "%-24s  %-20s  %-6d  %s\n", clip(p.Name, 24), p.Category, p.Chunks, p.Title)
	}
	fmt.Fprintf(out, "\n%d personas, %d chunks\n", stats.Personas, stats.Chunks)
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes every indexed chunk (or those of one persona) with its
persona metadata to <dir>/.index/export.yaml or export.json, or to --out.`,
	Args: cobra.NoArgs,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	opts := queryOptsFromFlags(cmd, args)
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(cfg.Index.Path), "export."+format)
	}

	switch format {
	case "yaml":
		err = idx.ExportYAML(cmd.Context(), outPath, opts)
	case "json":
		err = idx.ExportJSON(cmd.Context(), outPath, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
	return nil
}

// --- shared helpers ---

func openIndex() (*knowledge.Index, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return knowledge.Open(cfg.Index, openStore(cfg))
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	personaName, _ := cmd.Flags().GetString("persona")
	limit, _ := cmd.Flags().GetInt("limit")
	return knowledge.QueryOptions{
		Query:      strings.Join(args, " "),
		Persona:    personaName,
		MaxResults: limit,
	}
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func init() {
	indexSearchCmd.Flags().String("persona", "", "restrict results to one persona")
	indexSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use index.max_results)")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("out", "", "output file (default: <index dir>/export.<format>)")
	indexExportCmd.Flags().String("persona", "", "export only this persona")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
