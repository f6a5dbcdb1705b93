package extractor

import (
	"testing"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/internal/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestLinkExtractor(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<article><h2><a href="/posts/42">Newest</a></h2><a href="/posts/42#comments">Comments</a></article>
		<article><a href="/posts/41">Older</a></article>
	</body></html>`

	rep := NewLatestLinkExtractor().Extract([]byte(html), "https://blog.example.com/")
	assert.Equal(t, page.KindLatest, rep.Kind)
	assert.Equal(t, "https://blog.example.com/posts/42", rep.Latest())
}

func TestLatestLinkExtractorWithoutArticle(t *testing.T) {
	rep := NewLatestLinkExtractor().Extract([]byte(`<body><a href="/x">x</a></body>`), "https://example.com/")
	assert.True(t, rep.IsZero())

	rep = NewLatestLinkExtractor().Extract([]byte(`<article><p>No link</p></article>`), "https://example.com/")
	assert.True(t, rep.IsZero())
}

func TestCreateExtractor(t *testing.T) {
	testCases := []struct {
		strategy config.Strategy
		kind     page.Kind
		name     string
	}{
		{config.StrategyLinks, page.KindLinks, "LinkSet"},
		{config.StrategyHash, page.KindDigest, "Hash"},
		{config.StrategyLatest, page.KindLatest, "LatestArticle"},
	}

	for _, tc := range testCases {
		e, err := CreateExtractor(&config.Config{Strategy: tc.strategy})
		require.NoError(t, err)
		assert.Equal(t, tc.kind, e.Kind())
		assert.Equal(t, tc.name, e.GetName())
	}

	_, err := CreateExtractor(&config.Config{Strategy: "bogus"})
	assert.Error(t, err)
}
