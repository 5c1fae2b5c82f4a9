// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/wml/stypes"
)

// Code runs are 10pt on a light grey background.
const (
	codePointSize = 10
	codeShading   = "F5F5F5"
)

// NativeConverter renders Markdown in process, one Word paragraph per
// classified block.
type NativeConverter struct{}

// NewNativeConverter returns the in-process converter.
func NewNativeConverter() *NativeConverter {
	return &NativeConverter{}
}

// Convert reads mdPath and writes the rendered document to docxPath.
func (n *NativeConverter) Convert(mdPath, docxPath string) error {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", mdPath, err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}

	for _, b := range Parse(string(data)) {
		switch b.Kind {
		case BlockHeading:
			if _, err := doc.AddHeading(b.Text, uint(b.Level)); err != nil {
				return fmt.Errorf("adding heading %q: %w", b.Text, err)
			}
		case BlockCode:
			// Code keeps its line structure: one shaded paragraph per line.
			for _, line := range strings.Split(b.Text, "\n") {
				doc.AddEmptyParagraph().AddText(line).
					Size(codePointSize).
					Shading(stypes.ShdClear, "auto", codeShading)
			}
		case BlockBlank:
			doc.AddParagraph("")
		default:
			doc.AddParagraph(b.Text)
		}
	}

	if err := doc.SaveTo(docxPath); err != nil {
		return fmt.Errorf("writing %s: %w", docxPath, err)
	}
	return nil
}
