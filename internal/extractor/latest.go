package extractor

import (
	"sjsage522/pagewatch/internal/page"
)

// LatestLinkExtractor tracks the first link of the first article on the page
type LatestLinkExtractor struct {
	BaseExtractor
}

// NewLatestLinkExtractor creates an extractor scoped to LatestScope
func NewLatestLinkExtractor() *LatestLinkExtractor {
	return &LatestLinkExtractor{
		BaseExtractor: newBase("LatestArticle", LatestScope),
	}
}

// Kind returns page.KindLatest
func (e *LatestLinkExtractor) Kind() page.Kind {
	return page.KindLatest
}

// Extract returns the resolved href of the first anchor inside the first
// article element. Pages without an article yield a zero representation.
func (e *LatestLinkExtractor) Extract(body []byte, pageURL string) page.Representation {
	doc := e.createDocument(body, pageURL)
	if doc == nil {
		return page.NewLatest("")
	}

	sel, scoped := e.scope(doc)
	if !scoped {
		e.log.Warn().Str("scope", e.Scope).Msg("No article found on page")
		return page.NewLatest("")
	}

	href, ok := sel.Find("a[href]").First().Attr("href")
	if !ok {
		e.log.Warn().Msg("First article has no link")
		return page.NewLatest("")
	}

	link, ok := ResolveURL(baseURL(doc, pageURL), href)
	if !ok {
		e.log.Warn().Str("href", href).Msg("First article link is not an http(s) URL")
		return page.NewLatest("")
	}
	return page.NewLatest(link)
}
