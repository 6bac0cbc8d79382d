package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TokenProvider supplies an authorized token source for the Docs API.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// DocsReader fetches documents through the Google Docs API.
type DocsReader struct {
	tokens TokenProvider
	logger *zap.Logger
}

// NewDocsReader wires a DocsReader.
func NewDocsReader(tokens TokenProvider, logger *zap.Logger) *DocsReader {
	return &DocsReader{tokens: tokens, logger: logger}
}

// Fetch downloads a document and flattens it to plain text.
func (r *DocsReader) Fetch(ctx context.Context, docID string) (*Doc, error) {
	ts, err := r.tokens.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := docs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("init docs service: %w", err)
	}
	doc, err := svc.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("fetching document failed", zap.String("doc_id", docID), zap.Error(err))
		}
		return nil, wrapGoogleErr(err)
	}

	text := FlattenBody(doc.Body)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTextContent
	}
	return &Doc{ID: docID, Title: doc.Title, Text: text}, nil
}

// FlattenBody extracts plain text from the Docs body tree. Paragraphs are
// separated by blank lines; non-paragraph elements (tables, section
// breaks) carry no prose and are skipped.
func FlattenBody(body *docs.Body) string {
	if body == nil {
		return ""
	}
	var paragraphs []string
	for _, element := range body.Content {
		if element.Paragraph == nil {
			continue
		}
		var sb strings.Builder
		for _, pe := range element.Paragraph.Elements {
			if pe.TextRun != nil {
				sb.WriteString(pe.TextRun.Content)
			}
		}
		if text := strings.TrimRight(sb.String(), "\n"); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func wrapGoogleErr(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrAuthRequired
	case http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return err
	}
}
