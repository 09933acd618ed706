package codec

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// a gap this many times the tightest line pitch starts a new paragraph
	paragraphGapFactor = 1.2
	// with uniform pitch, a line this much shorter than the longest one ends
	// its paragraph
	shortLineFactor = 0.7
	// glyphs whose baselines differ by less than this share a line
	sameLineFactor = 0.3
	// a horizontal jump this large between runs is a word space
	wordGapFactor = 0.15
)

func extractPDF(data []byte) (ExtractionResult, error) {
	if len(data) == 0 {
		return ExtractionResult{}, fmt.Errorf("empty pdf content")
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open pdf: %w", err)
	}

	res := ExtractionResult{Method: "pdf-text", Pages: r.NumPage()}
	var paras []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		lines := pageLines(p.Content().Text)
		if len(lines) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: no text", i))
			continue
		}
		paras = append(paras, splitParagraphs(lines)...)
	}
	res.Text = normalizeParagraphs(paras)
	return res, nil
}

type textLine struct {
	y    float64
	size float64
	text string
}

// pageLines groups glyphs by baseline, top to bottom. Glyphs keep their
// stream order inside a run; a new run that starts past the previous one's
// end gets a space.
func pageLines(glyphs []pdf.Text) []textLine {
	if len(glyphs) == 0 {
		return nil
	}
	items := append([]pdf.Text(nil), glyphs...)
	// PDF y grows upwards
	sort.SliceStable(items, func(i, j int) bool { return items[i].Y > items[j].Y })

	var groups [][]pdf.Text
	for _, t := range items {
		if n := len(groups); n > 0 {
			head := groups[n-1][0]
			tol := math.Max(head.FontSize, t.FontSize) * sameLineFactor
			if math.Abs(head.Y-t.Y) <= tol {
				groups[n-1] = append(groups[n-1], t)
				continue
			}
		}
		groups = append(groups, []pdf.Text{t})
	}

	lines := make([]textLine, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].X < g[j].X })
		var b strings.Builder
		var size float64
		for i, t := range g {
			size = math.Max(size, t.FontSize)
			if i > 0 && startsNewWord(g[i-1], t) {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
		}
		s := strings.Join(strings.Fields(b.String()), " ")
		if s == "" {
			continue
		}
		lines = append(lines, textLine{y: g[0].Y, size: size, text: s})
	}
	return lines
}

func startsNewWord(prev, cur pdf.Text) bool {
	if strings.TrimSpace(prev.S) == "" || strings.TrimSpace(cur.S) == "" {
		return false
	}
	end := prev.X + prev.W
	if cur.X <= end+0.01 {
		return false
	}
	if prev.W == 0 {
		// no width info: glyphs of one run share an origin, so any
		// forward jump is a new run
		return true
	}
	return cur.X-end > cur.FontSize*wordGapFactor
}

// splitParagraphs breaks where the font size changes, where the vertical
// gap is clearly wider than the tightest pitch, or, when every gap is the
// same, after a line much shorter than its neighbours.
func splitParagraphs(lines []textLine) []string {
	gaps := make([]float64, len(lines))
	minGap := math.Inf(1)
	for i := 1; i < len(lines); i++ {
		gaps[i] = lines[i-1].y - lines[i].y
		if sameSize(lines[i-1], lines[i]) && gaps[i] > 0 && gaps[i] < minGap {
			minGap = gaps[i]
		}
	}
	varied := false
	for i := 1; i < len(lines); i++ {
		if sameSize(lines[i-1], lines[i]) && gaps[i] > minGap*paragraphGapFactor {
			varied = true
			break
		}
	}
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l.text))
	}

	var paras []string
	cur := []string{lines[0].text}
	for i := 1; i < len(lines); i++ {
		prev := lines[i-1]
		brk := false
		switch {
		case !sameSize(prev, lines[i]):
			brk = true
		case varied:
			brk = gaps[i] > minGap*paragraphGapFactor
		default:
			brk = float64(utf8.RuneCountInString(prev.text)) < float64(longest)*shortLineFactor
		}
		if brk {
			paras = append(paras, strings.Join(cur, " "))
			cur = nil
		}
		cur = append(cur, lines[i].text)
	}
	paras = append(paras, strings.Join(cur, " "))
	return paras
}

func sameSize(a, b textLine) bool {
	return math.Abs(a.size-b.size) < 0.5
}
