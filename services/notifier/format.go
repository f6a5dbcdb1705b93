package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"sjsage522/pagewatch/internal/page"
)

// EscapeHTML escapes text for Telegram's HTML parse mode
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// BuildEvents turns a change into the messages to deliver. Links runs send
// one message per new link, or a single summary when more than threshold
// links are new.
func BuildEvents(change page.Change, target string, threshold int, now time.Time) []page.ChangeEvent {
	if !change.Changed {
		return nil
	}

	switch change.Kind {
	case page.KindLinks:
		if len(change.NewLinks) > threshold {
			return []page.ChangeEvent{{
				Kind:       page.KindLinks,
				Target:     target,
				Links:      change.NewLinks,
				Message:    summaryMessage(change.NewLinks, target, threshold),
				DetectedAt: now,
			}}
		}
		events := make([]page.ChangeEvent, 0, len(change.NewLinks))
		for _, link := range change.NewLinks {
			events = append(events, page.ChangeEvent{
				Kind:       page.KindLinks,
				Target:     target,
				Links:      []string{link},
				Message:    "<b>🔗 New link found</b>\n\n" + EscapeHTML(link),
				DetectedAt: now,
			})
		}
		return events

	case page.KindDigest:
		return []page.ChangeEvent{{
			Kind:       page.KindDigest,
			Target:     target,
			Digest:     change.Current.Digest,
			Message:    "<b>🔔 Page changed</b>\n\n" + EscapeHTML(target),
			DetectedAt: now,
		}}

	case page.KindLatest:
		link := change.Current.Latest()
		return []page.ChangeEvent{{
			Kind:       page.KindLatest,
			Target:     target,
			Links:      []string{link},
			Message:    "<b>🚀 New Article Found!</b>\n\n" + EscapeHTML(link),
			DetectedAt: now,
		}}
	}
	return nil
}

func summaryMessage(links []string, target string, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🔗 %d new links</b> on %s\n", len(links), EscapeHTML(target))
	for _, link := range links[:threshold] {
		b.WriteString("\n")
		b.WriteString(EscapeHTML(link))
	}
	if rest := len(links) - threshold; rest > 0 {
		fmt.Fprintf(&b, "\n\n…and %d more", rest)
	}
	return b.String()
}
