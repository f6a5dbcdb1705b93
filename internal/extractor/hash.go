package extractor

import (
	"crypto/sha256"
	"encoding/hex"

	"sjsage522/pagewatch/internal/page"
)

// HashExtractor fingerprints the visible text of a single container
type HashExtractor struct {
	BaseExtractor
}

// NewHashExtractor creates a hash extractor scoped to HashScope
func NewHashExtractor() *HashExtractor {
	return &HashExtractor{
		BaseExtractor: newBase("Hash", HashScope),
	}
}

// Kind returns page.KindDigest
func (e *HashExtractor) Kind() page.Kind {
	return page.KindDigest
}

// Extract returns the SHA-256 of the container's visible text. Markup and
// attributes are ignored so invisible metadata changes do not count. When
// the container is absent or has no visible text the whole document's text
// is hashed.
func (e *HashExtractor) Extract(body []byte, pageURL string) page.Representation {
	doc := e.createDocument(body, pageURL)
	if doc == nil {
		return page.NewDigest("")
	}

	sel, scoped := e.scope(doc)
	if !scoped {
		e.log.Debug().Str("scope", e.Scope).Msg("Container not found, hashing whole document text")
	}

	text := visibleText(sel)
	if text == "" && scoped {
		e.log.Debug().Str("scope", e.Scope).Msg("Container has no text, hashing whole document text")
		text = visibleText(doc.Selection)
	}
	if text == "" {
		e.log.Warn().Msg("Page has no visible text")
		return page.NewDigest("")
	}

	digest := Digest(text)
	e.log.Debug().Str("digest", digest).Int("text_length", len(text)).Msg("Computed page digest")
	return page.NewDigest(digest)
}

// Digest returns the hex SHA-256 of the UTF-8 encoding of text
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
