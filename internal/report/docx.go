// File path: internal/report/docx.go
package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Style controls the body text of a rendered document.
type Style struct {
	Font string
	// Size is in points.
	Size int
}

func DefaultStyle() Style {
	return Style{Font: "Calibri", Size: 11}
}

const (
	emuPerInch    = 914400
	imageWidthEMU = 3 * emuPerInch
	linkColor     = "0066CC"

	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

type relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type mediaFile struct {
	Name string
	Data []byte
}

// docxBuilder accumulates the document body together with the relationships
// and media it references.
type docxBuilder struct {
	style  Style
	body   bytes.Buffer
	rels   []relationship
	media  []mediaFile
	links  map[string]string
	nextID int
	shapes int
}

// WriteDOCX renders doc as a WordprocessingML package.
func WriteDOCX(w io.Writer, doc *Document, style Style) error {
	if doc == nil {
		return fmt.Errorf("report: nil document")
	}
	if strings.TrimSpace(style.Font) == "" {
		style.Font = DefaultStyle().Font
	}
	if style.Size <= 0 {
		style.Size = DefaultStyle().Size
	}
	b := &docxBuilder{style: style, links: make(map[string]string), nextID: 1}
	b.addRel(relTypeStyles, "styles.xml", false)
	for _, block := range doc.Blocks {
		b.writeBlock(block)
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"docProps/core.xml", []byte(coreXML(doc.Title))},
		{"word/styles.xml", []byte(stylesXML(style))},
		{"word/document.xml", []byte(b.documentXML())},
		{"word/_rels/document.xml.rels", []byte(b.relsXML())},
	}
	for _, m := range b.media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/media/" + m.Name, m.Data})
	}
	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize docx: %w", err)
	}
	return nil
}

func (b *docxBuilder) addRel(relType, target string, external bool) string {
	id := fmt.Sprintf("rId%d", b.nextID)
	b.nextID++
	b.rels = append(b.rels, relationship{ID: id, Type: relType, Target: target, External: external})
	return id
}

func (b *docxBuilder) writeBlock(block Block) {
	switch block.Kind {
	case BlockPageBreak:
		b.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	case BlockHeading:
		styleID := "Title"
		if block.Level > 0 {
			styleID = fmt.Sprintf("Heading%d", block.Level)
		}
		fmt.Fprintf(&b.body, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, styleID, escape(block.Text))
	case BlockParagraph:
		b.body.WriteString("<w:p>")
		if block.Justify {
			b.body.WriteString(`<w:pPr><w:jc w:val="both"/></w:pPr>`)
		}
		for _, run := range block.Runs {
			b.writeRun(run)
		}
		b.body.WriteString("</w:p>")
	case BlockImageRow:
		b.writeImageRow(block.Images)
	}
}

func (b *docxBuilder) runProps(bold, link bool) string {
	var props strings.Builder
	props.WriteString("<w:rPr>")
	fmt.Fprintf(&props, `<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/>`, escape(b.style.Font))
	if bold {
		props.WriteString("<w:b/>")
	}
	if link {
		fmt.Fprintf(&props, `<w:color w:val="%s"/><w:u w:val="single"/>`, linkColor)
	}
	fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, b.style.Size*2, b.style.Size*2)
	props.WriteString("</w:rPr>")
	return props.String()
}

func (b *docxBuilder) writeRun(run Run) {
	text := fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, b.runProps(run.Bold, run.Link != ""), escape(run.Text))
	if run.Link == "" {
		b.body.WriteString(text)
		return
	}
	id, ok := b.links[run.Link]
	if !ok {
		id = b.addRel(relTypeHyperlink, run.Link, true)
		b.links[run.Link] = id
	}
	fmt.Fprintf(&b.body, `<w:hyperlink r:id="%s">%s</w:hyperlink>`, id, text)
}

func (b *docxBuilder) writeMissing() {
	fmt.Fprintf(&b.body, `<w:p><w:r>%s<w:t>%s</w:t></w:r></w:p>`, b.runProps(false, false), escape(MissingImageText))
}

func (b *docxBuilder) writeImageRow(slots []ImageSlot) {
	const cellWidth = 4680
	b.body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr><w:tblGrid>`)
	for range slots {
		fmt.Fprintf(&b.body, `<w:gridCol w:w="%d"/>`, cellWidth)
	}
	b.body.WriteString(`</w:tblGrid><w:tr>`)
	for _, slot := range slots {
		fmt.Fprintf(&b.body, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, cellWidth)
		if slot.Missing {
			b.writeMissing()
		} else if err := b.writePicture(slot); err != nil {
			b.writeMissing()
		}
		b.body.WriteString(`</w:tc>`)
	}
	b.body.WriteString(`</w:tr></w:tbl><w:p/>`)
}

func (b *docxBuilder) writePicture(slot ImageSlot) error {
	data, err := os.ReadFile(slot.Path)
	if err != nil {
		return err
	}
	width, height := int64(imageWidthEMU), int64(imageWidthEMU)
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 {
		height = width * int64(cfg.Height) / int64(cfg.Width)
	}
	b.shapes++
	ext := strings.ToLower(filepath.Ext(slot.Path))
	if ext == "" {
		ext = ".png"
	}
	mediaName := fmt.Sprintf("image%d%s", b.shapes, ext)
	b.media = append(b.media, mediaFile{Name: mediaName, Data: data})
	relID := b.addRel(relTypeImage, "media/"+mediaName, false)
	fmt.Fprintf(&b.body, `<w:p><w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="%[3]d" name="Picture %[3]d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%[3]d" name="%[4]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[5]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		width, height, b.shapes, escape(slot.Name), relID)
	return nil
}

func (b *docxBuilder) documentXML() string {
	var out strings.Builder
	out.WriteString(xml.Header)
	out.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`)
	out.Write(b.body.Bytes())
	out.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`)
	return out.String()
}

func (b *docxBuilder) relsXML() string {
	var out strings.Builder
	out.WriteString(xml.Header)
	out.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, rel := range b.rels {
		mode := ""
		if rel.External {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&out, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, rel.ID, rel.Type, escape(rel.Target), mode)
	}
	out.WriteString(`</Relationships>`)
	return out.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Default Extension="jpg" ContentType="image/jpeg"/>` +
	`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

func coreXML(title string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return xml.Header + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(title) + `</dc:title>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + `</dcterms:created>` +
		`</cp:coreProperties>`
}

func stylesXML(style Style) string {
	font := escape(style.Font)
	heading := func(id, name string, size int) string {
		return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`+
			`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/></w:pPr>`+
			`<w:rPr><w:b/><w:color w:val="1F3864"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`, id, name, size, size)
	}
	return xml.Header + `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:docDefaults><w:rPrDefault><w:rPr>` +
		fmt.Sprintf(`<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/><w:sz w:val="%[2]d"/><w:szCs w:val="%[2]d"/>`, font, style.Size*2) +
		`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault></w:docDefaults>` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
		heading("Title", "Title", 56) +
		heading("Heading1", "heading 1", 32) +
		heading("Heading2", "heading 2", 26) +
		heading("Heading3", "heading 3", 24) +
		`</w:styles>`
}
