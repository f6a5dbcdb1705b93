package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sjsage522/pagewatch/internal/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", EscapeHTML("a <b> & c"))
	assert.Equal(t, "http://x/?a=1&amp;b=2", EscapeHTML("http://x/?a=1&b=2"))
}

func TestBuildEventsLinks(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	change := page.Change{
		Kind:     page.KindLinks,
		Changed:  true,
		NewLinks: []string{"http://x/a", "http://x/b?q=1&r=<2>"},
	}

	events := BuildEvents(change, "http://x/", 10, now)
	require.Len(t, events, 2)
	assert.Equal(t, "<b>🔗 New link found</b>\n\nhttp://x/a", events[0].Message)
	assert.Equal(t, "<b>🔗 New link found</b>\n\nhttp://x/b?q=1&amp;r=&lt;2&gt;", events[1].Message)
	assert.Equal(t, []string{"http://x/a"}, events[0].Links)
	assert.Equal(t, now, events[0].DetectedAt)
}

func TestBuildEventsSummary(t *testing.T) {
	var links []string
	for i := 0; i < 12; i++ {
		links = append(links, fmt.Sprintf("http://x/%02d", i))
	}
	change := page.Change{Kind: page.KindLinks, Changed: true, NewLinks: links}

	events := BuildEvents(change, "http://x/", 10, time.Now())
	require.Len(t, events, 1)
	assert.Len(t, events[0].Links, 12)
	assert.True(t, strings.HasPrefix(events[0].Message, "<b>🔗 12 new links</b>"))
	assert.Contains(t, events[0].Message, "http://x/09")
	assert.NotContains(t, events[0].Message, "http://x/10")
	assert.Contains(t, events[0].Message, "and 2 more")
}

func TestBuildEventsDigestAndLatest(t *testing.T) {
	digest := page.Change{Kind: page.KindDigest, Changed: true, Current: page.NewDigest("abc")}
	events := BuildEvents(digest, "http://x/?a&b", 10, time.Now())
	require.Len(t, events, 1)
	assert.Equal(t, "<b>🔔 Page changed</b>\n\nhttp://x/?a&amp;b", events[0].Message)
	assert.Equal(t, "abc", events[0].Digest)

	latest := page.Change{Kind: page.KindLatest, Changed: true, Current: page.NewLatest("http://x/post/2")}
	events = BuildEvents(latest, "http://x/", 10, time.Now())
	require.Len(t, events, 1)
	assert.Equal(t, "<b>🚀 New Article Found!</b>\n\nhttp://x/post/2", events[0].Message)
}

func TestBuildEventsUnchanged(t *testing.T) {
	assert.Nil(t, BuildEvents(page.Change{Kind: page.KindLinks}, "http://x/", 10, time.Now()))
}
