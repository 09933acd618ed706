package codec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	pdfMarginPt  = 40
	pdfTitle     = "Material Adaptado"
	pdfTitleSize = 16
	// stands in for a rune the core fonts cannot draw
	pdfMissingGlyph = '?'
	// render fails when more than 1/unmappableLimit of the visible runes
	// have no glyph
	unmappableLimit = 3
)

func renderPDF(l Layout) ([]byte, error) {
	typo := l.Typography
	family := typo.PDFFamily()
	size := typo.FontSizePt()
	lineHeight := size * 1.2 * typo.LineSpacing()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMarginPt, pdfMarginPt, pdfMarginPt)
	pdf.SetAutoPageBreak(true, pdfMarginPt)
	pdf.AddPage()

	pdf.SetFont(family, "B", pdfTitleSize)
	pdf.CellFormat(0, pdfTitleSize*1.5, winAnsi(pdfTitle), "", 1, "C", false, 0, "")
	pdf.Ln(typo.ParagraphGapPt())

	pdf.SetFont(family, "", size)
	for _, para := range l.Paragraphs {
		pdf.MultiCell(0, lineHeight, winAnsi(para), "", "L", false)
		pdf.Ln(typo.ParagraphGapPt())
	}

	if pdf.Err() {
		return nil, fmt.Errorf("gofpdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// winAnsi encodes s for the core fonts, which only cover Windows-1252.
func winAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = pdfMissingGlyph
		}
		b.WriteByte(c)
	}
	return b.String()
}

// unmappableRunes lists the distinct runes the core fonts cannot draw and
// counts the visible runes overall.
func unmappableRunes(paras []string) (missing []rune, missingCount, visible int) {
	seen := make(map[rune]bool)
	for _, p := range paras {
		for _, r := range p {
			if unicode.IsSpace(r) {
				continue
			}
			visible++
			if _, ok := charmap.Windows1252.EncodeRune(r); ok {
				continue
			}
			missingCount++
			if !seen[r] {
				seen[r] = true
				missing = append(missing, r)
			}
		}
	}
	return missing, missingCount, visible
}
