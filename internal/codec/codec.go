package codec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
)

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "docx-xml"
	Duration time.Duration
	Warnings []string
}

// Codec turns stored documents into plain text and plain text back into documents.
type Codec struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{logger: logger}
}

// Extract picks a strategy based on the declared format. Empty or garbage
// output is an ErrExtraction wrapping ErrNoExtractableText.
func (c *Codec) Extract(ctx context.Context, data []byte, format constants.FileFormat) (res ExtractionResult, err error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return ExtractionResult{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("codec.extract.panic", "format", format, "panic", fmt.Sprint(r))
			res = ExtractionResult{}
			err = common.NewDomainError(common.ErrExtraction, "document parser crashed", fmt.Errorf("%v", r))
		}
	}()

	switch format {
	case constants.PDF:
		res, err = extractPDF(data)
	case constants.DOCX:
		res, err = extractDOCX(data)
	default:
		c.logger.Error("codec.extract.unsupported", "format", format)
		return ExtractionResult{}, common.NewDomainError(common.ErrUnsupportedFormat, fmt.Sprintf("unsupported format %q", format), nil)
	}
	res.Duration = time.Since(start)
	if err != nil {
		c.logger.Error("codec.extract.error", "format", format, "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return ExtractionResult{}, common.NewDomainError(common.ErrExtraction, "could not read document", err)
	}

	if !looksLikeText(res.Text) {
		c.logger.Warn("codec.extract.no_text", "format", format, "bytes", len(data), "pages", res.Pages)
		return ExtractionResult{}, common.NewDomainError(common.ErrExtraction, "document has no readable text", common.ErrNoExtractableText)
	}

	c.logger.Info("codec.extract.ok",
		"format", format,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// Render lays text out per the typography and encodes it in the requested format.
func (c *Codec) Render(ctx context.Context, text string, format constants.FileFormat, typo Typography) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout := Plan(text, typo)

	var (
		out []byte
		err error
	)
	switch format {
	case constants.PDF:
		out, err = c.renderPDFChecked(layout)
	case constants.DOCX:
		out, err = renderDOCX(layout)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		c.logger.Error("codec.render.error", "format", format, "error", err)
		return nil, common.NewDomainError(common.ErrRender, "could not render document", err)
	}

	c.logger.Info("codec.render.ok",
		"format", format,
		"paragraphs", len(layout.Paragraphs),
		"sans_serif", typo.SansSerif,
		"dyslexia", typo.Dyslexia,
		"bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// renderPDFChecked refuses text that is mostly outside the core font
// character set and logs what gets replaced otherwise.
func (c *Codec) renderPDFChecked(l Layout) ([]byte, error) {
	missing, count, visible := unmappableRunes(l.Paragraphs)
	if count == 0 {
		return renderPDF(l)
	}
	if count*unmappableLimit > visible {
		return nil, fmt.Errorf("%d of %d characters cannot be drawn with %s", count, visible, l.Typography.PDFFamily())
	}
	const maxSample = 16
	sample := missing
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	c.logger.Warn("codec.render.unmappable",
		"family", l.Typography.PDFFamily(),
		"count", count,
		"distinct", len(missing),
		"sample", string(sample),
	)
	return renderPDF(l)
}

// looksLikeText rejects empty, letterless or mostly non-printable output.
func looksLikeText(s string) bool {
	if strings.TrimSpace(s) == "" || !utf8.ValidString(s) {
		return false
	}
	var letters, total, junk int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == utf8.RuneError, unicode.IsControl(r), r >= 0xE000 && r <= 0xF8FF:
			junk++
		}
	}
	if letters == 0 {
		return false
	}
	return junk*10 < total*3
}

// normalizeParagraphs trims every paragraph, collapses inner runs of
// spaces and drops empty ones. Single newlines inside a paragraph survive.
func normalizeParagraphs(paras []string) string {
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		lines := strings.Split(p, "\n")
		kept := lines[:0]
		for _, ln := range lines {
			ln = strings.Join(strings.FieldsFunc(ln, isInlineSpace), " ")
			if ln != "" {
				kept = append(kept, ln)
			}
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, "\n"))
		}
	}
	return strings.Join(out, "\n\n")
}

func isInlineSpace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}
