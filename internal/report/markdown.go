// File path: internal/report/markdown.go
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// RenderMarkdown renders the document model as Markdown. Image paths are
// written relative to baseDir when possible.
func RenderMarkdown(w io.Writer, doc *Document, baseDir string) error {
	if doc == nil {
		return fmt.Errorf("report: nil document")
	}
	var b strings.Builder
	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockHeading:
			level := block.Level + 1
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", level), block.Text)
		case BlockParagraph:
			for _, run := range block.Runs {
				switch {
				case run.Link != "":
					fmt.Fprintf(&b, "<%s>", run.Link)
				case run.Bold:
					fmt.Fprintf(&b, "**%s**", run.Text)
				default:
					b.WriteString(run.Text)
				}
			}
			b.WriteString("\n\n")
		case BlockImageRow:
			cells := make([]string, 0, len(block.Images))
			for _, slot := range block.Images {
				if slot.Missing {
					cells = append(cells, MissingImageText)
					continue
				}
				cells = append(cells, fmt.Sprintf("![%s](%s)", slot.Name, relativePath(baseDir, slot.Path)))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
			b.WriteString("|" + strings.Repeat(" --- |", len(cells)) + "\n\n")
		case BlockPageBreak:
			b.WriteString("---\n\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func relativePath(baseDir, path string) string {
	if baseDir == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
