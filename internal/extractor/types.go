package extractor

import (
	"sjsage522/pagewatch/internal/page"
)

// Extractor derives a comparable representation from a fetched document.
// Implementations never fail: a document that cannot be parsed yields a
// zero representation, which the differ treats as "no data".
type Extractor interface {
	// Extract summarizes body, resolving relative links against pageURL
	Extract(body []byte, pageURL string) page.Representation

	// Kind returns the representation kind this extractor produces
	Kind() page.Kind

	// GetName returns the extractor's name for logging and identification
	GetName() string
}

// Hard-coded container scopes per strategy
const (
	LinkScope   = "body"
	HashScope   = "main"
	LatestScope = "article"
)

// DefaultDenylist holds social-share domains skipped by link extraction
var DefaultDenylist = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"pinterest.com",
	"reddit.com",
	"t.me",
	"telegram.me",
	"wa.me",
	"whatsapp.com",
}
