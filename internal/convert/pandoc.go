// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdiddy/persona-mcp/internal/container"
)

const imagePandoc = "pandoc/core:latest"

var pandocArgs = []string{"-f", "markdown", "-t", "docx", "-o", "-"}

// PandocConverter converts Markdown by piping it through the pandoc
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type PandocConverter struct {
	runtime container.Runtime
}

// NewPandocConverter creates a converter that uses rt to run the pandoc
// image, pulling the image first when it is not present.
func NewPandocConverter(rt container.Runtime) (*PandocConverter, error) {
	if err := container.EnsureImage(rt, imagePandoc); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &PandocConverter{runtime: rt}, nil
}

// Convert pipes mdPath through pandoc and writes the document to docxPath.
func (p *PandocConverter) Convert(mdPath, docxPath string) error {
	f, err := os.Open(mdPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", mdPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := p.runtime.Run(imagePandoc, pandocArgs, f, &out); err != nil {
		return fmt.Errorf("converting %s with pandoc: %w", mdPath, err)
	}
	if out.Len() == 0 {
		return fmt.Errorf("pandoc produced empty output for %s", mdPath)
	}

	return os.WriteFile(docxPath, out.Bytes(), 0o644)
}
