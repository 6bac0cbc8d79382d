package document

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestResolverServesCachedText(t *testing.T) {
	doc := Doc{ID: "1abc_DEF-123", Title: "Cached Doc", Text: "cached text"}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	cache := &fakeCache{entries: map[string]string{doc.ID: string(raw)}}
	reader := NewDocsReader(&failingTokens{}, nil)
	resolver := NewResolver(reader, nil, cache, nil)

	got, err := resolver.FromGoogleDoc(context.Background(), "https://docs.google.com/document/d/1abc_DEF-123/edit")

	require.NoError(t, err)
	require.Equal(t, doc, *got)
}

func TestResolverPropagatesAuthError(t *testing.T) {
	reader := NewDocsReader(&failingTokens{}, nil)
	resolver := NewResolver(reader, nil, nil, nil)

	_, err := resolver.FromGoogleDoc(context.Background(), "1abc_DEF-123")

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrAuthRequired))
}

func TestResolverRejectsInvalidSource(t *testing.T) {
	resolver := NewResolver(nil, nil, nil, nil)

	_, err := resolver.FromGoogleDoc(context.Background(), "https://example.com/nope")

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSource))
}

type failingTokens struct{}

func (f *failingTokens) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return nil, ErrAuthRequired
}

type fakeCache struct {
	entries map[string]string
}

func (f *fakeCache) CachedText(ctx context.Context, key string) (string, bool, error) {
	text, ok := f.entries[key]
	return text, ok, nil
}

func (f *fakeCache) StoreText(ctx context.Context, key, text string) error {
	f.entries[key] = text
	return nil
}
