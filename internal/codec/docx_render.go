package codec

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

func renderDOCX(l Layout) ([]byte, error) {
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML(l)},
		{"word/styles.xml", stylesXML(l.Typography)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// docx sizes are half-points; spacing is twentieths of a point.
func runProps(t Typography, sizePt float64) string {
	var b strings.Builder
	b.WriteString("<w:rPr>")
	fmt.Fprintf(&b, `<w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/>`, t.DOCXFamily())
	fmt.Fprintf(&b, `<w:sz w:val="%[1]d"/><w:szCs w:val="%[1]d"/>`, int(sizePt*2))
	b.WriteString("</w:rPr>")
	return b.String()
}

func paraProps(t Typography) string {
	line := int(240 * t.LineSpacing())
	after := int(t.ParagraphGapPt() * 20)
	return fmt.Sprintf(`<w:pPr><w:spacing w:after="%d" w:line="%d" w:lineRule="auto"/></w:pPr>`, after, line)
}

func documentXML(l Layout) string {
	t := l.Typography
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="` + wordprocessingNS + `"><w:body>`)

	// unlike the pdf there is no title; the body is the adapted text only
	if len(l.Paragraphs) == 0 {
		b.WriteString("<w:p/>")
	}
	for _, para := range l.Paragraphs {
		b.WriteString("<w:p>" + paraProps(t) + "<w:r>" + runProps(t, t.FontSizePt()))
		for i, ln := range strings.Split(para, "\n") {
			if i > 0 {
				b.WriteString("<w:br/>")
			}
			b.WriteString(`<w:t xml:space="preserve">` + escapeXML(ln) + "</w:t>")
		}
		b.WriteString("</w:r></w:p>")
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>`)
	b.WriteString(`<w:pgMar w:top="800" w:right="800" w:bottom="800" w:left="800" w:header="708" w:footer="708" w:gutter="0"/>`)
	b.WriteString("</w:sectPr></w:body></w:document>")
	return b.String()
}

func stylesXML(t Typography) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:styles xmlns:w="` + wordprocessingNS + `">`)
	b.WriteString("<w:docDefaults><w:rPrDefault>" + runProps(t, t.FontSizePt()) + "</w:rPrDefault>")
	b.WriteString("<w:pPrDefault>" + paraProps(t) + "</w:pPrDefault></w:docDefaults>")
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	b.WriteString("</w:styles>")
	return b.String()
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
