package document

import (
	"errors"
	"regexp"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrInvalidSource    = errors.New("could not extract document id")
	ErrNoTextContent    = errors.New("no text content found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("document not found")
	ErrAuthRequired     = errors.New("google docs authentication required")
	ErrRateLimited      = errors.New("google api rate limit exceeded")
	ErrTooLarge         = errors.New("pdf exceeds size limit")
)

// Doc is a resolved source document.
type Doc struct {
	ID    string
	Title string
	Text  string
}

// Accepted forms of the document parameter. Share links, edit/view URLs
// and the legacy ?id= form all carry the same identifier.
var docIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/document/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

var bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ExtractID pulls the document ID out of a Google Docs URL. A value that
// already looks like a bare ID is passed through unchanged.
func ExtractID(raw string) (string, error) {
	for _, pattern := range docIDPatterns {
		if match := pattern.FindStringSubmatch(raw); match != nil {
			return match[1], nil
		}
	}
	if bareIDPattern.MatchString(raw) {
		return raw, nil
	}
	return "", ErrInvalidSource
}
