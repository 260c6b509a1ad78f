// File path: internal/report/assembler.go
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicodishanthj/spinyleaf/internal/common"
	"github.com/nicodishanthj/spinyleaf/internal/common/telemetry"
)

// ReferencesTitle heads the trailing bibliography section.
const ReferencesTitle = "References"

// Section is one dimension's narrative ready for assembly.
type Section struct {
	Title     string
	Dimension string
	Text      string
	ImageDir  string
	// Skipped marks a section whose narrative could not be generated.
	Skipped bool
}

// Assembler turns narrative text into document blocks.
type Assembler struct {
	logger   *slog.Logger
	warnings []error
}

func NewAssembler() *Assembler {
	return &Assembler{logger: common.Logger()}
}

// Warnings returns the non-fatal problems seen so far, such as missing
// images.
func (a *Assembler) Warnings() []error {
	return append([]error(nil), a.warnings...)
}

// AddSection appends a page break, the section heading and the parsed
// narrative. Reference lines go to bib, which is returned for the next call.
func (a *Assembler) AddSection(doc *Document, bib *Bibliography, section Section) (*Bibliography, error) {
	if doc == nil {
		return bib, errors.New("report: nil document")
	}
	if strings.TrimSpace(section.Title) == "" {
		return bib, errors.New("report: section title required")
	}
	if bib == nil {
		bib = NewBibliography()
	}
	dimension := strings.ToLower(strings.TrimSpace(section.Dimension))
	doc.AddPageBreak()
	doc.AddHeading(section.Title, 1)
	doc.Sections = append(doc.Sections, SectionInfo{Title: section.Title, Dimension: dimension, Skipped: section.Skipped})

	inReferences := false
	added := 0
	for _, raw := range strings.Split(section.Text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case dimension != "" && IsPlaceholder(line, dimension):
			doc.AddImageRow(a.imageRow(dimension, section.ImageDir))
		case isReferencesMarker(line):
			inReferences = true
		case strings.HasPrefix(line, "## "):
			inReferences = false
			doc.AddHeading(strings.TrimSpace(line[3:]), 2)
		case strings.HasPrefix(line, "### "):
			doc.AddHeading(strings.TrimSpace(line[4:]), 3)
		case inReferences:
			if bib.Add(trimBullet(line)) {
				added++
			}
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			doc.AddParagraph(ParseInline("• "+strings.TrimSpace(line[2:])), true)
		default:
			doc.AddParagraph(ParseInline(line), true)
		}
	}
	status := "assembled"
	if section.Skipped {
		status = "skipped"
	}
	telemetry.RecordSection(dimension, status)
	a.logger.Debug("report: section assembled", "section", section.Title, "references_added", added)
	return bib, nil
}

// Finish appends the References section once, only when bib holds entries.
func (a *Assembler) Finish(doc *Document, bib *Bibliography) {
	if doc == nil || bib.Len() == 0 {
		return
	}
	doc.AddPageBreak()
	doc.AddHeading(ReferencesTitle, 1)
	doc.Sections = append(doc.Sections, SectionInfo{Title: ReferencesTitle, Dimension: "references"})
	for _, entry := range bib.Entries() {
		doc.AddParagraph(ParseInline(entry), true)
	}
	telemetry.RecordSection("references", "assembled")
}

func (a *Assembler) imageRow(dimension, dir string) []ImageSlot {
	names := []string{dimension + "_factors.png", dimension + "_satisfaction.png"}
	slots := make([]ImageSlot, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		slot := ImageSlot{Name: name, Path: path}
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			err = fmt.Errorf("%s is a directory", path)
		}
		if err != nil {
			slot.Missing = true
			warning := &AssetMissingError{Dimension: dimension, Path: path, Err: err}
			a.warnings = append(a.warnings, warning)
			a.logger.Warn("report: image missing", "dimension", dimension, "path", path)
			telemetry.RecordMissingImage(dimension)
		}
		slots = append(slots, slot)
	}
	return slots
}

// IsPlaceholder reports whether a line asks for the dimension's images. The
// line may be wrapped in backticks, brackets or bold markers and may keep the
// "Add placeholder:" prompt prefix.
func IsPlaceholder(line, dimension string) bool {
	token := strings.Trim(strings.TrimSpace(line), "`*[]\"' ")
	if len(token) >= len("add placeholder:") && strings.EqualFold(token[:len("add placeholder:")], "add placeholder:") {
		token = strings.Trim(strings.TrimSpace(token[len("add placeholder:"):]), "`*[]\"' ")
	}
	return strings.EqualFold(token, dimension+"_images")
}

// isReferencesMarker matches "## References" (any case, optional colon) and
// a bare "References" line.
func isReferencesMarker(line string) bool {
	text := line
	if strings.HasPrefix(text, "## ") {
		text = strings.TrimSpace(text[3:])
	}
	text = strings.TrimSuffix(strings.Trim(text, "*"), ":")
	return strings.EqualFold(strings.TrimSpace(text), "references")
}

func trimBullet(line string) string {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return line
}
