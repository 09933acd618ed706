package codec

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
)

func newTestCodec() *Codec {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPlanSplitsOnBlankLines(t *testing.T) {
	text := "Intro.\n\nBody text here.\nsecond line\n\n\n  \nEnd."
	got := Plan(text, Typography{}).Paragraphs
	want := []string{"Intro.", "Body text here.\nsecond line", "End."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Plan (-want +got):\n%s", diff)
	}
}

func TestPlanEmptyText(t *testing.T) {
	if got := Plan("", Typography{}).Paragraphs; len(got) != 0 {
		t.Fatalf("Plan(empty): want=0 paragraphs got=%d", len(got))
	}
	if got := Plan(" \n\n\t", Typography{}).Paragraphs; len(got) != 0 {
		t.Fatalf("Plan(blank): want=0 paragraphs got=%d", len(got))
	}
}

func TestPlanIsStableOnItsOwnOutput(t *testing.T) {
	first := Plan("a\n\nb\nc\n\nd", Typography{})
	again := Plan(strings.Join(first.Paragraphs, "\n\n"), Typography{})
	if diff := cmp.Diff(first.Paragraphs, again.Paragraphs); diff != "" {
		t.Fatalf("Plan not stable (-first +again):\n%s", diff)
	}
}

func TestTypographyFor(t *testing.T) {
	p := entity.StudentProfile{Dislexia: constants.DislexiaSim, TipoLetra: constants.TipoLetraBastao}
	typo := TypographyFor(p)
	if !typo.SansSerif || !typo.Dyslexia {
		t.Fatalf("TypographyFor: want sans+dyslexia got=%+v", typo)
	}
	if typo.FontSizePt() != 14 || typo.LineSpacing() != 1.5 || typo.ParagraphGapPt() != 12 {
		t.Fatalf("dyslexia metrics: got size=%v spacing=%v gap=%v", typo.FontSizePt(), typo.LineSpacing(), typo.ParagraphGapPt())
	}
	if typo.PDFFamily() != "Helvetica" || typo.DOCXFamily() != "Arial" {
		t.Fatalf("sans families: got pdf=%s docx=%s", typo.PDFFamily(), typo.DOCXFamily())
	}

	plain := TypographyFor(entity.StudentProfile{Dislexia: constants.DislexiaNao, TipoLetra: constants.TipoLetraNormal})
	if plain.SansSerif || plain.Dyslexia {
		t.Fatalf("TypographyFor(plain): got=%+v", plain)
	}
	if plain.FontSizePt() != 12 || plain.LineSpacing() != 1.0 || plain.ParagraphGapPt() != 6 {
		t.Fatalf("plain metrics: got size=%v spacing=%v gap=%v", plain.FontSizePt(), plain.LineSpacing(), plain.ParagraphGapPt())
	}
	if plain.PDFFamily() != "Times" || plain.DOCXFamily() != "Calibri" {
		t.Fatalf("serif families: got pdf=%s docx=%s", plain.PDFFamily(), plain.DOCXFamily())
	}
}

func TestDOCXRoundTrip(t *testing.T) {
	c := newTestCodec()
	ctx := context.Background()
	text := "Intro.\n\nBody text & <more> here.\n\nAção e atenção."

	out, err := c.Render(ctx, text, constants.DOCX, Typography{SansSerif: true, Dyslexia: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	res, err := c.Extract(ctx, out, constants.DOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != text {
		t.Fatalf("round trip: want=%q got=%q", text, res.Text)
	}
}

func TestDOCXRenderUsesTypography(t *testing.T) {
	c := newTestCodec()
	out, err := c.Render(context.Background(), "Olá.", constants.DOCX, Typography{SansSerif: true, Dyslexia: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readZipPart(t, out, "word/document.xml")
	for _, want := range []string{`w:line="360"`, `w:after="240"`, `w:ascii="Arial"`, `<w:sz w:val="28"/>`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document.xml: want %s", want)
		}
	}

	out, err = c.Render(context.Background(), "Olá.", constants.DOCX, Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc = readZipPart(t, out, "word/document.xml")
	for _, want := range []string{`w:line="240"`, `w:after="120"`, `w:ascii="Calibri"`, `<w:sz w:val="24"/>`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document.xml: want %s", want)
		}
	}
}

func TestDOCXRenderHasNoTitle(t *testing.T) {
	c := newTestCodec()
	out, err := c.Render(context.Background(), "", constants.DOCX, Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := readZipPart(t, out, "word/document.xml")
	if n := strings.Count(doc, "<w:p>"); n != 0 {
		t.Fatalf("paragraphs: want=0 got=%d", n)
	}
	if strings.Contains(doc, pdfTitle) {
		t.Fatalf("document.xml: unexpected %q heading", pdfTitle)
	}

	out, err = c.Render(context.Background(), "Um.\n\nDois.", constants.DOCX, Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := strings.Count(readZipPart(t, out, "word/document.xml"), "<w:p>"); n != 2 {
		t.Fatalf("paragraphs: want=2 got=%d", n)
	}
}

func TestPDFRoundTripKeepsParagraphs(t *testing.T) {
	c := newTestCodec()
	ctx := context.Background()

	out, err := c.Render(ctx, "Intro.\n\nBody text here.", constants.PDF, Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	res, err := c.Extract(ctx, out, constants.PDF)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := pdfTitle + "\n\nIntro.\n\nBody text here."
	if res.Text != want {
		t.Fatalf("round trip: want=%q got=%q", want, res.Text)
	}
}

func TestPDFRoundTripWrappedParagraphs(t *testing.T) {
	first := strings.Repeat("O ciclo da água tem etapas que se repetem quando renderizado em várias linhas. ", 4)
	second := strings.Repeat("A evaporação acontece com o calor do sol e forma nuvens no céu. ", 4)
	text := strings.TrimSpace(first) + "\n\n" + strings.TrimSpace(second)
	want := []string{pdfTitle, strings.TrimSpace(first), strings.TrimSpace(second)}

	for _, typo := range []Typography{{}, {SansSerif: true, Dyslexia: true}} {
		c := newTestCodec()
		out, err := c.Render(context.Background(), text, constants.PDF, typo)
		if err != nil {
			t.Fatalf("Render(%+v): %v", typo, err)
		}
		res, err := c.Extract(context.Background(), out, constants.PDF)
		if err != nil {
			t.Fatalf("Extract(%+v): %v", typo, err)
		}
		if diff := cmp.Diff(want, strings.Split(res.Text, "\n\n")); diff != "" {
			t.Fatalf("paragraphs %+v (-want +got):\n%s", typo, diff)
		}
	}
}

func TestPDFRenderTypography(t *testing.T) {
	c := newTestCodec()
	text := "Intro.\n\nCorpo do texto com acentuação."

	cases := []struct {
		typo      Typography
		bodyFont  string
		titleFont string
		size      float64
	}{
		{Typography{SansSerif: true, Dyslexia: true}, "Helvetica", "Helvetica-Bold", 14},
		{Typography{}, "Times-Roman", "Times-Bold", 12},
	}
	for _, tc := range cases {
		var paraCounts []int
		for run := 0; run < 2; run++ {
			out, err := c.Render(context.Background(), text, constants.PDF, tc.typo)
			if err != nil {
				t.Fatalf("Render(%+v): %v", tc.typo, err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Fatalf("Render: want %%PDF- header")
			}
			if !bytes.Contains(out, []byte("/BaseFont /"+tc.bodyFont)) {
				t.Fatalf("Render(%+v): want /BaseFont /%s", tc.typo, tc.bodyFont)
			}
			fonts := pdfGlyphFonts(t, out)
			if got := fonts[tc.bodyFont]; got != tc.size {
				t.Fatalf("Render(%+v): %s size want=%v got=%v (fonts=%v)", tc.typo, tc.bodyFont, tc.size, got, fonts)
			}
			if got := fonts[tc.titleFont]; got != pdfTitleSize {
				t.Fatalf("Render(%+v): %s size want=%v got=%v", tc.typo, tc.titleFont, pdfTitleSize, got)
			}
			if len(fonts) != 2 {
				t.Fatalf("Render(%+v): want title and body fonts only got=%v", tc.typo, fonts)
			}
			res, err := c.Extract(context.Background(), out, constants.PDF)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			paraCounts = append(paraCounts, len(strings.Split(res.Text, "\n\n")))
		}
		if paraCounts[0] != 3 || paraCounts[1] != paraCounts[0] {
			t.Fatalf("Render(%+v) twice: paragraph counts want=[3 3] got=%v", tc.typo, paraCounts)
		}
	}
}

func TestPDFRenderReplacesUnmappableRunes(t *testing.T) {
	var logs bytes.Buffer
	c := New(slog.New(slog.NewTextHandler(&logs, nil)))

	out, err := c.Render(context.Background(), "Olá 😀 mundo, tudo bem com você hoje?", constants.PDF, Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(logs.String(), "codec.render.unmappable") {
		t.Fatalf("logs: want codec.render.unmappable got=%s", logs.String())
	}
	res, err := c.Extract(context.Background(), out, constants.PDF)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(res.Text, "Olá ? mundo") {
		t.Fatalf("Extract: want replacement glyph got=%q", res.Text)
	}
}

func TestPDFRenderRejectsMostlyUnmappableText(t *testing.T) {
	out, err := newTestCodec().Render(context.Background(), "世界你好世界你好 ok", constants.PDF, Typography{})
	if !errors.Is(err, common.ErrRender) || out != nil {
		t.Fatalf("Render: want ErrRender and nil bytes got=%v len=%d", err, len(out))
	}
}

func pdfGlyphFonts(t *testing.T, data []byte) map[string]float64 {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("pdf.NewReader: %v", err)
	}
	fonts := make(map[string]float64)
	for i := 1; i <= r.NumPage(); i++ {
		for _, g := range r.Page(i).Content().Text {
			if strings.TrimSpace(g.S) == "" {
				continue
			}
			fonts[g.Font] = g.FontSize
		}
	}
	return fonts
}

func TestRenderUnsupportedFormat(t *testing.T) {
	out, err := newTestCodec().Render(context.Background(), "x", constants.FileFormat("odt"), Typography{})
	if !errors.Is(err, common.ErrRender) || out != nil {
		t.Fatalf("Render(odt): want ErrRender and nil bytes got=%v len=%d", err, len(out))
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	c := newTestCodec()
	ctx := context.Background()

	cases := []struct {
		name   string
		data   []byte
		format constants.FileFormat
	}{
		{"random pdf", []byte("definitely not a pdf"), constants.PDF},
		{"empty pdf", nil, constants.PDF},
		{"random docx", []byte{0x00, 0x01, 0x02}, constants.DOCX},
		{"docx without body", zipWith(t, map[string]string{"other.xml": "<x/>"}), constants.DOCX},
	}
	for _, tc := range cases {
		_, err := c.Extract(ctx, tc.data, tc.format)
		if !errors.Is(err, common.ErrExtraction) {
			t.Fatalf("%s: want ErrExtraction got=%v", tc.name, err)
		}
	}
}

func TestExtractLetterlessDocxHasNoText(t *testing.T) {
	c := newTestCodec()
	data := zipWith(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="` + wordprocessingNS + `"><w:body><w:p><w:r><w:t>12 34 -- !!</w:t></w:r></w:p></w:body></w:document>`,
	})
	_, err := c.Extract(context.Background(), data, constants.DOCX)
	if !errors.Is(err, common.ErrExtraction) || !errors.Is(err, common.ErrNoExtractableText) {
		t.Fatalf("Extract: want ErrExtraction+ErrNoExtractableText got=%v", err)
	}
}

func TestExtractDocxTabsAndBreaks(t *testing.T) {
	c := newTestCodec()
	body := `<w:p><w:r><w:t>Nome:</w:t><w:tab/><w:t>Ana</w:t><w:br/><w:t>Turma A</w:t></w:r></w:p>` +
		`<w:p></w:p><w:p><w:r><w:t xml:space="preserve">  Fim  </w:t></w:r></w:p>`
	data := zipWith(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="` + wordprocessingNS + `"><w:body>` + body + `</w:body></w:document>`,
	})
	res, err := c.Extract(context.Background(), data, constants.DOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Nome: Ana\nTurma A\n\nFim"
	if res.Text != want {
		t.Fatalf("Extract: want=%q got=%q", want, res.Text)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := newTestCodec().Extract(context.Background(), []byte("x"), constants.FileFormat("txt"))
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Fatalf("Extract(txt): want ErrUnsupportedFormat got=%v", err)
	}
}

func TestLooksLikeText(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Olá mundo", true},
		{"", false},
		{"   \n", false},
		{"1234 5678", false},
		{"a\x01\x02\x03\x04\x05", false},
	}
	for _, tc := range cases {
		if got := looksLikeText(tc.in); got != tc.want {
			t.Fatalf("looksLikeText(%q): want=%v got=%v", tc.in, tc.want, got)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	cases := []struct {
		name  string
		lines []textLine
		want  []string
	}{
		{
			name: "wider gap breaks",
			lines: []textLine{
				{y: 700, size: 12, text: "primeira linha do texto"},
				{y: 685.6, size: 12, text: "continua aqui."},
				{y: 665.2, size: 12, text: "Novo bloco."},
			},
			want: []string{"primeira linha do texto continua aqui.", "Novo bloco."},
		},
		{
			name: "size change breaks",
			lines: []textLine{
				{y: 780, size: 16, text: "Titulo"},
				{y: 760, size: 12, text: "Corpo."},
			},
			want: []string{"Titulo", "Corpo."},
		},
		{
			name: "uniform pitch breaks after short line",
			lines: []textLine{
				{y: 700, size: 12, text: "Intro."},
				{y: 679.6, size: 12, text: "Body text here."},
			},
			want: []string{"Intro.", "Body text here."},
		},
		{
			name: "uniform pitch keeps full lines together",
			lines: []textLine{
				{y: 700, size: 12, text: "uma linha cheia de texto"},
				{y: 685.6, size: 12, text: "outra linha cheia texto"},
				{y: 671.2, size: 12, text: "fim."},
			},
			want: []string{"uma linha cheia de texto outra linha cheia texto fim."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, splitParagraphs(tc.lines)); diff != "" {
				t.Fatalf("splitParagraphs (-want +got):\n%s", diff)
			}
		})
	}
}

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("zip part %s: missing", name)
	return ""
}

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
