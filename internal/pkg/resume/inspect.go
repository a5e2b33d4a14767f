package resume

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Document summarizes a resume that was opened successfully
type Document struct {
	MIME       string
	Pages      int // zero for DOCX
	Characters int // length of the extracted content
}

// Inspect opens a PDF or DOCX document and measures its extracted content.
// Malformed input is reported as an error.
func Inspect(data []byte, mimeType string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed document: %v", r)
		}
	}()

	switch mimeType {
	case MIMEPDF:
		return inspectPDF(data)
	case MIMEDOCX:
		return inspectDOCX(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", mimeType)
	}
}

func inspectPDF(data []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	var text strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, _ := page.GetPlainText(nil)
		text.WriteString(content)
	}

	return &Document{MIME: MIMEPDF, Pages: pages, Characters: len(strings.TrimSpace(text.String()))}, nil
}

func inspectDOCX(data []byte) (*Document, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return &Document{MIME: MIMEDOCX, Characters: len(strings.TrimSpace(content))}, nil
}
