package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFExtractor pulls plain text out of uploaded PDFs.
type PDFExtractor struct {
	maxBytes int64
	logger   *zap.Logger
}

// NewPDFExtractor builds the extractor with an upload size cap.
func NewPDFExtractor(maxBytes int64, logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{maxBytes: maxBytes, logger: logger}
}

// Text extracts page text joined with blank lines.
func (e *PDFExtractor) Text(r io.ReaderAt, size int64) (string, error) {
	if e.maxBytes > 0 && size > e.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the document.
			if e.logger != nil {
				e.logger.Warn("pdf page extraction failed", zap.Int("page", i), zap.Error(err))
			}
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	joined := strings.Join(pages, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return "", ErrNoTextContent
	}
	return joined, nil
}
