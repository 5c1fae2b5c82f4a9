// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
)

// BlockKind classifies one rendered paragraph.
type BlockKind int

const (
	BlockBlank BlockKind = iota
	BlockHeading
	BlockCode
	BlockBullet
	BlockNumbered
	BlockText
)

func (k BlockKind) String() string {
	switch k {
	case BlockBlank:
		return "blank"
	case BlockHeading:
		return "heading"
	case BlockCode:
		return "code"
	case BlockBullet:
		return "bullet"
	case BlockNumbered:
		return "numbered"
	case BlockText:
		return "text"
	}
	return "unknown"
}

// Block is one paragraph of a Markdown document.
type Block struct {
	Kind BlockKind
	// Level is the heading depth, 1 to 4. Zero for other kinds.
	Level int
	Text  string
}

const (
	codeFence  = "```"
	bulletMark = "• "
	maxHeading = 4
)

var (
	bulletRe   = regexp.MustCompile(`^[*-]\s+`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+`)
)

// Parse classifies Markdown line by line. A code fence collects every line
// up to the closing fence, or to the end of input when there is none.
func Parse(markdown string) []Block {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")

	var blocks []Block
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, Block{Kind: BlockBlank})
			continue
		}

		if level, text, ok := heading(line); ok {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: level, Text: text})
			continue
		}

		if strings.HasPrefix(line, codeFence) {
			var code []string
			for i++; i < len(lines) && !strings.HasPrefix(lines[i], codeFence); i++ {
				code = append(code, lines[i])
			}
			blocks = append(blocks, Block{Kind: BlockCode, Text: strings.Join(code, "\n")})
			continue
		}

		switch {
		case bulletRe.MatchString(line):
			blocks = append(blocks, Block{Kind: BlockBullet, Text: bulletRe.ReplaceAllString(line, bulletMark)})
		case numberedRe.MatchString(line):
			blocks = append(blocks, Block{Kind: BlockNumbered, Text: line})
		default:
			blocks = append(blocks, Block{Kind: BlockText, Text: line})
		}
	}
	return blocks
}

// heading matches "# " through "#### ".
func heading(line string) (int, string, bool) {
	for level := 1; level <= maxHeading; level++ {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(line, prefix) {
			return level, strings.TrimLeft(line[len(prefix):], " \t"), true
		}
	}
	return 0, "", false
}
