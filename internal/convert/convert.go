// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert renders Markdown documentation as Word documents with
// pluggable backends.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/persona-mcp/internal/container"
	"github.com/pdiddy/persona-mcp/pkg/types"
)

const docxExt = ".docx"

// Converter renders the Markdown file at mdPath as a .docx file at
// docxPath. The native and pandoc backends implement this interface.
type Converter interface {
	Convert(mdPath, docxPath string) error
}

// New returns the converter for backend. The pandoc backend needs a
// container runtime with the pandoc image present.
func New(backend types.ConversionBackend) (Converter, error) {
	switch backend {
	case "", types.BackendNative:
		return NewNativeConverter(), nil
	case types.BackendPandoc:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewPandocConverter(rt)
	}
	return nil, fmt.Errorf("conversion backend %q is not supported", backend)
}

// Job is one Markdown input and its Word output.
type Job struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// defaultDocs are the project documents converted when no inputs are given.
var defaultDocs = []string{"README", "INSTALL", "QUICKSTART", "SUMMARY", "TECHNICAL_SPEC"}

// DefaultJobs returns the standard documentation set under dir, each
// written next to its input.
func DefaultJobs(dir string) []Job {
	jobs := make([]Job, len(defaultDocs))
	for i, name := range defaultDocs {
		jobs[i] = Job{
			Input:  filepath.Join(dir, name+".md"),
			Output: filepath.Join(dir, name+docxExt),
		}
	}
	return jobs
}

// JobsFor builds jobs for the given Markdown paths. Outputs go to outDir,
// or next to each input when outDir is empty.
func JobsFor(paths []string, outDir string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Input: p, Output: outputPath(p, outDir)}
	}
	return jobs
}

// LoadManifest reads a YAML list of {input, output} jobs. Relative paths
// are resolved against the manifest's directory; a missing output is
// derived from the input.
func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var jobs []Job
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range jobs {
		if jobs[i].Input == "" {
			return nil, fmt.Errorf("manifest %s: entry %d has no input", path, i+1)
		}
		if !filepath.IsAbs(jobs[i].Input) {
			jobs[i].Input = filepath.Join(base, jobs[i].Input)
		}
		switch {
		case jobs[i].Output == "":
			jobs[i].Output = outputPath(jobs[i].Input, "")
		case !filepath.IsAbs(jobs[i].Output):
			jobs[i].Output = filepath.Join(base, jobs[i].Output)
		}
	}
	return jobs, nil
}

// ConvertFile runs one job and prints its status line to w.
func ConvertFile(c Converter, job Job, w io.Writer) error {
	if err := convertFile(c, job); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", job.Input, err)
		return err
	}
	fmt.Fprintf(w, "converted: %s\n", job.Output)
	return nil
}

func convertFile(c Converter, job Job) error {
	if _, err := os.Stat(job.Input); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return c.Convert(job.Input, job.Output)
}

// ConvertBatch runs every job, printing per-file status to w and returning
// a summary. A failed job does not stop the batch.
func ConvertBatch(c Converter, jobs []Job, w io.Writer) BatchResult {
	var result BatchResult
	for _, job := range jobs {
		if err := ConvertFile(c, job, w); err != nil {
			result.Failed++
			continue
		}
		result.Converted++
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result
}

func outputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + docxExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}
