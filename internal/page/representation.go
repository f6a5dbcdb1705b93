// Package page holds the comparable summary of a fetched page and the rules
// for deciding whether it changed since the previous run.
package page

import (
	"time"

	"sjsage522/pagewatch/helpers"
)

// Kind identifies how a page was summarized
type Kind string

const (
	// KindLinks is a set of absolute URLs taken from anchors
	KindLinks Kind = "links"
	// KindDigest is a hex SHA-256 of the page text
	KindDigest Kind = "digest"
	// KindLatest is the single newest article link
	KindLatest Kind = "latest"
)

// Representation is the derived, comparable state of a page.
// Links are kept sorted and free of duplicates.
type Representation struct {
	Kind   Kind
	Links  []string
	Digest string
}

// NewLinkSet builds a link-set representation
func NewLinkSet(links []string) Representation {
	return Representation{Kind: KindLinks, Links: helpers.UniqueSorted(links)}
}

// NewDigest builds a digest representation
func NewDigest(digest string) Representation {
	return Representation{Kind: KindDigest, Digest: digest}
}

// NewLatest builds a single-link representation; an empty link yields a zero value
func NewLatest(link string) Representation {
	if link == "" {
		return Representation{Kind: KindLatest}
	}
	return Representation{Kind: KindLatest, Links: []string{link}}
}

// IsZero reports whether the representation carries no data
func (r Representation) IsZero() bool {
	if r.Kind == KindDigest {
		return r.Digest == ""
	}
	return len(r.Links) == 0
}

// Latest returns the single link of a KindLatest representation
func (r Representation) Latest() string {
	if len(r.Links) == 0 {
		return ""
	}
	return r.Links[0]
}

// Equal compares observable content; links compare as sets
func (r Representation) Equal(other Representation) bool {
	if r.Kind == KindDigest || other.Kind == KindDigest {
		return r.Digest == other.Digest && r.IsZero() == other.IsZero()
	}
	a, b := helpers.UniqueSorted(r.Links), helpers.UniqueSorted(other.Links)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Records serializes the representation as one record per line
func (r Representation) Records() []string {
	switch r.Kind {
	case KindDigest:
		if r.Digest == "" {
			return nil
		}
		return []string{r.Digest}
	case KindLatest:
		if l := r.Latest(); l != "" {
			return []string{l}
		}
		return nil
	default:
		return helpers.UniqueSorted(r.Links)
	}
}

// FromRecords rebuilds a representation of the given kind from stored records
func FromRecords(kind Kind, records []string) Representation {
	switch kind {
	case KindDigest:
		if len(records) == 0 {
			return NewDigest("")
		}
		return NewDigest(records[0])
	case KindLatest:
		if len(records) == 0 {
			return NewLatest("")
		}
		return NewLatest(records[0])
	default:
		return NewLinkSet(records)
	}
}

// ChangeEvent is one notification payload produced by a run
type ChangeEvent struct {
	Kind       Kind      `json:"kind"`
	Target     string    `json:"target"`
	Links      []string  `json:"links,omitempty"`
	Digest     string    `json:"digest,omitempty"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detected_at"`
}
