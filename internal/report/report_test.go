// File path: internal/report/report_test.go
package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func blocksOf(doc *Document, kind BlockKind) []Block {
	var out []Block
	for _, b := range doc.Blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

func TestPlaceholderYieldsTwoSlots(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "comfort_factors.png"), 40, 20)

	doc := NewDocument("Wellbeing by Design")
	asm := NewAssembler()
	_, err := asm.AddSection(doc, NewBibliography(), Section{Title: "Comfort", Dimension: "comfort", ImageDir: dir, Text: "Intro\nAdd placeholder: `comfort_images`\n"})
	require.NoError(t, err)

	rows := blocksOf(doc, BlockImageRow)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Images, 2)
	assert.False(t, rows[0].Images[0].Missing)
	assert.True(t, rows[0].Images[1].Missing)

	warnings := asm.Warnings()
	require.Len(t, warnings, 1)
	var missing *AssetMissingError
	require.True(t, errors.As(warnings[0], &missing))
	assert.Equal(t, filepath.Join(dir, "comfort_satisfaction.png"), missing.Path)
}

func TestIsPlaceholder(t *testing.T) {
	for _, line := range []string{"comfort_images", "`comfort_images`", "Add placeholder: `comfort_images`", "[COMFORT_IMAGES]", "**comfort_images**"} {
		assert.True(t, IsPlaceholder(line, "comfort"), line)
	}
	for _, line := range []string{"delight_images", "see comfort_images below", "comfort_images_extra"} {
		assert.False(t, IsPlaceholder(line, "comfort"), line)
	}
}

func TestReferencesModeLeavesOnNextHeading(t *testing.T) {
	text := strings.Join([]string{
		"## Thermal",
		"Rooms overheat.",
		"## References",
		"- Wolkoff, P., 2018. Indoor air humidity.",
		"Tsai, D.H., 2012. Office workers.",
		"### Notes",
		"## Next Steps",
		"Add shading.",
		"- Fit external louvres",
	}, "\n")
	doc := NewDocument("T")
	bib, err := NewAssembler().AddSection(doc, nil, Section{Title: "Comfort", Dimension: "comfort", Text: text})
	require.NoError(t, err)

	assert.Equal(t, []string{"Tsai, D.H., 2012. Office workers.", "Wolkoff, P., 2018. Indoor air humidity."}, bib.Entries())

	var headings []string
	for _, h := range blocksOf(doc, BlockHeading) {
		headings = append(headings, h.Text)
	}
	assert.Equal(t, []string{"T", "Comfort", "Thermal", "Notes", "Next Steps"}, headings)

	var paragraphs []string
	for _, p := range blocksOf(doc, BlockParagraph) {
		paragraphs = append(paragraphs, p.PlainText())
	}
	assert.Equal(t, []string{"Rooms overheat.", "Add shading.", "• Fit external louvres"}, paragraphs)
}

func TestBareReferencesLine(t *testing.T) {
	doc := NewDocument("T")
	bib, err := NewAssembler().AddSection(doc, NewBibliography(), Section{Title: "Social", Dimension: "social", Text: "Body.\nReferences:\nJordan, M. (2023)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jordan, M. (2023)"}, bib.Entries())
}

func TestBibliographyIdempotent(t *testing.T) {
	bib := NewBibliography()
	assert.True(t, bib.Add("Aries, M. (2015)"))
	assert.False(t, bib.Add("  Aries, M. (2015) "))
	assert.False(t, bib.Add(""))
	assert.Equal(t, 1, bib.Len())
}

func TestFinishAppendsReferencesOnce(t *testing.T) {
	asm := NewAssembler()
	doc := NewDocument("T")
	bib := NewBibliography()
	var err error
	for _, dim := range []string{"comfort", "delight"} {
		bib, err = asm.AddSection(doc, bib, Section{Title: dim, Dimension: dim, Text: "## References\nZed (2020)\nAlpha (2019)"})
		require.NoError(t, err)
	}
	asm.Finish(doc, bib)
	assert.Equal(t, []string{"comfort", "delight", "References"}, doc.SectionTitles())

	empty := NewDocument("T")
	asm.Finish(empty, NewBibliography())
	assert.Empty(t, empty.Sections)

	paragraphs := blocksOf(doc, BlockParagraph)
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "Alpha (2019)", paragraphs[0].PlainText())
}

func TestParseInline(t *testing.T) {
	runs := ParseInline("See **key finding** at https://doi.org/10.5334/bc.193 now")
	require.Len(t, runs, 5)
	assert.Equal(t, Run{Text: "See "}, runs[0])
	assert.Equal(t, Run{Text: "key finding", Bold: true}, runs[1])
	assert.Equal(t, Run{Text: " at "}, runs[2])
	assert.Equal(t, "https://doi.org/10.5334/bc.193", runs[3].Link)
	assert.Equal(t, Run{Text: " now"}, runs[4])
}

func TestWriteDOCX(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "social_factors.png"), 30, 15)
	doc := NewDocument("Wellbeing by Design")
	asm := NewAssembler()
	bib, err := asm.AddSection(doc, nil, Section{Title: "Social", Dimension: "social", ImageDir: dir,
		Text: "## Findings\nSee https://example.org & **more**\nsocial_images\n## References\nWilliams, J. (2005)"})
	require.NoError(t, err)
	asm.Finish(doc, bib)

	out := filepath.Join(dir, "out", "Wellbeing_Report.docx")
	staged, err := StageDOCX(out, doc, DefaultStyle())
	require.NoError(t, err)
	path, err := staged.Commit()
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(data)
	}
	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "word/media/image1.png")
	body := files["word/document.xml"]
	assert.Contains(t, body, `<w:pStyle w:val="Title"/>`)
	assert.Contains(t, body, `<w:pStyle w:val="Heading2"/>`)
	assert.Contains(t, body, "> &amp; <")
	assert.Contains(t, body, MissingImageText)
	assert.Contains(t, body, `<w:jc w:val="both"/>`)
	assert.Contains(t, body, `w:ascii="Calibri"`)
	assert.Contains(t, body, `<w:sz w:val="22"/>`)
	assert.Contains(t, files["word/_rels/document.xml.rels"], `Target="https://example.org" TargetMode="External"`)
	assert.Equal(t, 1, strings.Count(body, "Williams, J. (2005)"))

	leftovers, err := filepath.Glob(filepath.Join(dir, "out", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.docx")
	_, err := WriteFile(target, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStagedDiscardKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Wellbeing_Report.md")
	require.NoError(t, os.WriteFile(target, []byte("previous"), 0o644))

	staged, err := StageMarkdown(target, NewDocument("Wellbeing by Design"))
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	staged.Discard()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Wellbeing_Report.md", entries[0].Name())
}

func TestStagedCommitReplacesFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Wellbeing_Report.md")
	require.NoError(t, os.WriteFile(target, []byte("previous"), 0o644))

	staged, err := StageMarkdown(target, NewDocument("Wellbeing by Design"))
	require.NoError(t, err)
	path, err := staged.Commit()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Wellbeing by Design")
	staged.Discard()
	assert.FileExists(t, path)
}

func TestRenderMarkdown(t *testing.T) {
	doc := NewDocument("Wellbeing by Design")
	doc.AddHeading("Comfort", 1)
	doc.AddParagraph(ParseInline("**Bold** link https://x.org"), true)
	doc.AddImageRow([]ImageSlot{{Name: "a.png", Path: "/data/a.png"}, {Name: "b.png", Missing: true}})
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, doc, "/data"))
	out := buf.String()
	assert.Contains(t, out, "# Wellbeing by Design\n")
	assert.Contains(t, out, "## Comfort\n")
	assert.Contains(t, out, "**Bold** link <https://x.org>")
	assert.Contains(t, out, "| ![a.png](a.png) | [Missing image] |")
}
