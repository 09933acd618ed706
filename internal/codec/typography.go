package codec

import (
	"strings"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

// Typography is derived from two profile dimensions only.
type Typography struct {
	SansSerif bool
	Dyslexia  bool
}

func TypographyFor(p entity.StudentProfile) Typography {
	return Typography{
		SansSerif: p.TipoLetra == constants.TipoLetraBastao,
		Dyslexia:  p.Dislexia == constants.DislexiaSim,
	}
}

func (t Typography) FontSizePt() float64 {
	if t.Dyslexia {
		return 14
	}
	return 12
}

func (t Typography) LineSpacing() float64 {
	if t.Dyslexia {
		return 1.5
	}
	return 1.0
}

func (t Typography) ParagraphGapPt() float64 {
	if t.Dyslexia {
		return 12
	}
	return 6
}

// PDFFamily names a gofpdf core font.
func (t Typography) PDFFamily() string {
	if t.SansSerif {
		return "Helvetica"
	}
	return "Times"
}

func (t Typography) DOCXFamily() string {
	if t.SansSerif {
		return "Arial"
	}
	return "Calibri"
}

// Layout is the format-independent render plan.
type Layout struct {
	Typography Typography
	Paragraphs []string
}

// Plan splits on blank lines; every non-empty block becomes one paragraph.
func Plan(text string, typo Typography) Layout {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) == "" {
			flush()
			continue
		}
		cur = append(cur, strings.TrimRight(ln, " \t"))
	}
	flush()
	return Layout{Typography: typo, Paragraphs: paras}
}
