// File path: internal/report/document.go
package report

// BlockKind identifies a document block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockImageRow
	BlockPageBreak
)

// Run is a span of paragraph text. Link is set for hyperlinks.
type Run struct {
	Text string
	Bold bool
	Link string
}

// ImageSlot is one cell of an image row. Missing slots render as a marker.
type ImageSlot struct {
	Name    string
	Path    string
	Missing bool
}

// MissingImageText marks an image slot whose file was not found.
const MissingImageText = "[Missing image]"

type Block struct {
	Kind BlockKind
	// Level applies to headings; 0 is the document title.
	Level   int
	Text    string
	Runs    []Run
	Justify bool
	Images  []ImageSlot
}

// SectionInfo records a top-level section in document order.
type SectionInfo struct {
	Title     string
	Dimension string
	Skipped   bool
}

// Document is the format-neutral report model rendered by the DOCX and
// Markdown writers.
type Document struct {
	Title    string
	Blocks   []Block
	Sections []SectionInfo
}

// NewDocument starts a document with its title heading.
func NewDocument(title string) *Document {
	doc := &Document{Title: title}
	doc.AddHeading(title, 0)
	return doc
}

func (d *Document) AddHeading(text string, level int) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockHeading, Level: level, Text: text})
}

func (d *Document) AddParagraph(runs []Run, justify bool) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockParagraph, Runs: runs, Justify: justify})
}

func (d *Document) AddPageBreak() {
	d.Blocks = append(d.Blocks, Block{Kind: BlockPageBreak})
}

func (d *Document) AddImageRow(slots []ImageSlot) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockImageRow, Images: slots})
}

// SectionTitles lists top-level section titles in order.
func (d *Document) SectionTitles() []string {
	titles := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		titles = append(titles, s.Title)
	}
	return titles
}

// PlainText returns the text of a heading or a paragraph's runs.
func (b Block) PlainText() string {
	if b.Kind == BlockHeading {
		return b.Text
	}
	var out []byte
	for _, run := range b.Runs {
		out = append(out, run.Text...)
	}
	return string(out)
}
