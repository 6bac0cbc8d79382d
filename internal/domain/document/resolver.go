package document

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"
)

// TextCache stores resolved document text between requests.
type TextCache interface {
	CachedText(ctx context.Context, key string) (string, bool, error)
	StoreText(ctx context.Context, key, text string) error
}

// Resolver turns podcast sources into plain text.
type Resolver struct {
	docs   *DocsReader
	pdf    *PDFExtractor
	cache  TextCache
	logger *zap.Logger
}

// NewResolver wires a Resolver. cache may be nil.
func NewResolver(docs *DocsReader, pdf *PDFExtractor, cache TextCache, logger *zap.Logger) *Resolver {
	return &Resolver{docs: docs, pdf: pdf, cache: cache, logger: logger}
}

// FromGoogleDoc resolves a URL or bare ID to document text, consulting the
// cache first. Documents are readonly upstream, so a TTL'd cache is safe
// enough for repeat generations of the same doc.
func (r *Resolver) FromGoogleDoc(ctx context.Context, raw string) (*Doc, error) {
	docID, err := ExtractID(raw)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if cached, ok, err := r.cache.CachedText(ctx, docID); err == nil && ok {
			var doc Doc
			if json.Unmarshal([]byte(cached), &doc) == nil && doc.Text != "" {
				return &doc, nil
			}
		} else if err != nil && r.logger != nil {
			r.logger.Warn("text cache lookup failed", zap.Error(err))
		}
	}

	doc, err := r.docs.Fetch(ctx, docID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if raw, err := json.Marshal(doc); err == nil {
			if err := r.cache.StoreText(ctx, docID, string(raw)); err != nil && r.logger != nil {
				r.logger.Warn("text cache store failed", zap.Error(err))
			}
		}
	}
	return doc, nil
}

// FromPDF extracts text from an uploaded PDF.
func (r *Resolver) FromPDF(ctx context.Context, reader io.ReaderAt, size int64) (string, error) {
	return r.pdf.Text(reader, size)
}
