// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/persona-mcp/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert Markdown documentation to Word (.docx)",
	Long: `Convert renders Markdown files as Word documents. Without arguments it
converts the project documentation set (README, INSTALL, QUICKSTART,
SUMMARY, TECHNICAL_SPEC) found in --docs-dir. A --manifest YAML file lists
{input, output} pairs explicitly.

The native backend renders in process. The pandoc backend pipes each file
through the pandoc/core container image on docker or podman.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	manifest, _ := cmd.Flags().GetString("manifest")
	docsDir, _ := cmd.Flags().GetString("docs-dir")

	var jobs []convert.Job
	switch {
	case manifest != "":
		if jobs, err = convert.LoadManifest(manifest); err != nil {
			return err
		}
	case len(args) > 0:
		jobs = convert.JobsFor(args, cfg.Conversion.OutDir)
	default:
		jobs = convert.DefaultJobs(docsDir)
		if cfg.Conversion.OutDir != "" {
			inputs := make([]string, len(jobs))
			for i, j := range jobs {
				inputs[i] = j.Input
			}
			jobs = convert.JobsFor(inputs, cfg.Conversion.OutDir)
		}
	}

	c, err := convert.New(cfg.Conversion.Backend)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converting %d document(s) to Word format...\n\n", len(jobs))
	result := convert.ConvertBatch(c, jobs, out)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	convertCmd.Flags().String("backend", "native", "conversion backend: native or pandoc")
	convertCmd.Flags().String("out-dir", "", "directory for .docx output (default: next to each input)")
	convertCmd.Flags().String("manifest", "", "YAML file listing {input, output} pairs")
	convertCmd.Flags().String("docs-dir", ".", "directory holding the default documentation set")

	_ = viper.BindPFlag("convert.backend", convertCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("convert.out_dir", convertCmd.Flags().Lookup("out-dir"))

	rootCmd.AddCommand(convertCmd)
}
