package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// BaseExtractor provides common functionality for all extractors
type BaseExtractor struct {
	Name  string
	Scope string
	log   *logger.Logger
}

func newBase(name, scope string) BaseExtractor {
	return BaseExtractor{
		Name:  name,
		Scope: scope,
		log:   logger.ForComponent("extractor").WithStr("extractor", name),
	}
}

// GetName returns the extractor's name for logging
func (b *BaseExtractor) GetName() string {
	return b.Name
}

// createDocument parses body into a goquery document.
// A parse failure is logged as a parsing error and reported as nil.
func (b *BaseExtractor) createDocument(body []byte, pageURL string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		b.log.Warn().Err(apperrors.NewParsing(pageURL, "HTML parsing failed", err)).Msg("Treating page as empty")
		return nil
	}
	return doc
}

// scope returns the first element matching the extractor's container
// selector, or the whole document when the container is absent
func (b *BaseExtractor) scope(doc *goquery.Document) (*goquery.Selection, bool) {
	if b.Scope != "" {
		if sel := doc.Find(b.Scope).First(); sel.Length() > 0 {
			return sel, true
		}
	}
	return doc.Selection, false
}

// baseURL returns the URL relative links resolve against, honouring <base href>
func baseURL(doc *goquery.Document, pageURL string) *url.URL {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	if doc == nil {
		return base
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			return base.ResolveReference(ref)
		}
	}
	return base
}

// ResolveURL turns an href into an absolute http(s) URL without fragment.
// Fragment-only, empty and non-HTTP links are rejected.
func ResolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}

	scheme := strings.ToLower(resolved.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}

	resolved.Scheme = scheme
	resolved.Host = strings.ToLower(resolved.Host)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), true
}

// visibleText returns the whitespace-normalized text of sel, skipping
// script, style and other non-visible elements. Text nodes are joined with
// a space so adjacent block elements do not run together.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
