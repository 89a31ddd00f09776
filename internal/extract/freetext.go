// internal/extract/freetext.go
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractFreeText handles plain text uploads (.txt/.md). The whole body
// is assigned to a single inferred target field.
func (d *Dispatcher) extractFreeText(text, filename string, result *Result) {
	body := strings.Join(strings.Fields(text), " ")
	if body == "" {
		result.AddWarning("%s contains no text", filename)
		return
	}

	field := inferTargetField(filename, body)
	result.SetField(field, body)
	result.AddMessage("captured %s text from %s", field, filename)
}

// extractBinaryDocument handles PDF and Word uploads through their
// optional text-extraction capabilities.
func (d *Dispatcher) extractBinaryDocument(data []byte, filename string, extractor DocumentTextExtractor, kind string, result *Result) {
	if extractor == nil {
		result.AddWarning("%s document support is not available, %s was not processed", kind, filename)
		return
	}

	text, err := extractor.ExtractText(data)
	if err != nil {
		result.AddWarning("could not extract text from %s: %v", filename, err)
		return
	}
	d.extractFreeText(text, filename, result)
}

// inferTargetField decides which single field a document's text fills.
// A keyword in the filename wins; otherwise whichever of scope/purpose
// the body mentions more often, with purpose winning ties.
func inferTargetField(filename, body string) string {
	lowerName := strings.ToLower(filename)
	switch {
	case strings.Contains(lowerName, "scope"):
		return "scope"
	case strings.Contains(lowerName, "purpose"), strings.Contains(lowerName, "objective"):
		return "purpose"
	}

	lowerBody := strings.ToLower(body)
	scopeCount := strings.Count(lowerBody, "scope")
	purposeCount := strings.Count(lowerBody, "purpose")
	if scopeCount > purposeCount {
		return "scope"
	}
	return "purpose"
}

// PDFTextExtractor pulls plain text out of PDF files. Satisfies the
// DocumentTextExtractor capability.
type PDFTextExtractor struct{}

func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

func (e *PDFTextExtractor) ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// DocxTextExtractor concatenates paragraph text from Word documents.
// A .docx file is a zip archive whose word/document.xml holds the text
// runs, so the walk needs nothing beyond the standard library.
type DocxTextExtractor struct{}

func NewDocxTextExtractor() *DocxTextExtractor {
	return &DocxTextExtractor{}
}

func (e *DocxTextExtractor) ExtractText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return docxText(rc)
	}
	return "", fmt.Errorf("no word/document.xml in archive")
}

// docxText walks the XML stream collecting text runs (<w:t>) and
// inserting breaks at paragraph ends (<w:p>).
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
