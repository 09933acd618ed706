package codec

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// maxDocumentXML bounds how much of word/document.xml is inflated.
const maxDocumentXML = 64 << 20

func extractDOCX(data []byte) (ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open docx container: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return ExtractionResult{}, errors.New("docx has no word/document.xml")
	}
	rc, err := doc.Open()
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	paras, err := documentParagraphs(io.LimitReader(rc, maxDocumentXML))
	if err != nil {
		return ExtractionResult{}, err
	}
	return ExtractionResult{
		Text:   normalizeParagraphs(paras),
		Pages:  1,
		Method: "docx-xml",
	}, nil
}

// documentParagraphs walks the token stream: w:p is a paragraph, w:t is
// text, w:tab is a tab and w:br / w:cr are line breaks.
func documentParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		cur    strings.Builder
		inPara bool
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if inPara {
					paras = append(paras, cur.String())
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
