package extractor

import (
	"net/url"
	"strings"

	"sjsage522/pagewatch/internal/page"

	"github.com/PuerkitoBio/goquery"
)

// LinkSetExtractor collects every anchor inside the scope as an absolute URL
type LinkSetExtractor struct {
	BaseExtractor
	denylist []string
}

// NewLinkSetExtractor creates a link-set extractor. extraDenylist extends
// DefaultDenylist.
func NewLinkSetExtractor(extraDenylist []string) *LinkSetExtractor {
	deny := make([]string, 0, len(DefaultDenylist)+len(extraDenylist))
	deny = append(deny, DefaultDenylist...)
	for _, d := range extraDenylist {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" {
			deny = append(deny, d)
		}
	}
	return &LinkSetExtractor{
		BaseExtractor: newBase("LinkSet", LinkScope),
		denylist:      deny,
	}
}

// Kind returns page.KindLinks
func (e *LinkSetExtractor) Kind() page.Kind {
	return page.KindLinks
}

// Extract returns the set of resolved links found in the scope
func (e *LinkSetExtractor) Extract(body []byte, pageURL string) page.Representation {
	doc := e.createDocument(body, pageURL)
	if doc == nil {
		return page.NewLinkSet(nil)
	}

	base := baseURL(doc, pageURL)
	sel, scoped := e.scope(doc)
	if !scoped {
		e.log.Debug().Str("scope", e.Scope).Msg("Container not found, using whole document")
	}

	var links []string
	skipped := 0
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link, ok := ResolveURL(base, href)
		if !ok || e.denied(link) {
			skipped++
			return
		}
		links = append(links, link)
	})

	rep := page.NewLinkSet(links)
	e.log.Debug().
		Int("links", len(rep.Links)).
		Int("skipped", skipped).
		Msg("Extracted links")
	return rep
}

// denied reports whether link's host is a denylisted domain or one of its subdomains
func (e *LinkSetExtractor) denied(link string) bool {
	host := hostOf(link)
	for _, d := range e.denylist {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
