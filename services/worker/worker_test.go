package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/internal/extractor"
	"sjsage522/pagewatch/internal/page"
	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"
	"sjsage522/pagewatch/services/notifier"
	"sjsage522/pagewatch/services/publisher"
	"sjsage522/pagewatch/services/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFetcher serves a fixed body or error
type MockFetcher struct {
	body  string
	err   error
	calls int
}

func (m *MockFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.body), nil
}

// MockStore keeps the representation in memory
type MockStore struct {
	rep   page.Representation
	kind  page.Kind
	loads int
	saves int
}

var _ state.Store = (*MockStore)(nil)

func (m *MockStore) Load(ctx context.Context) (page.Representation, error) {
	m.loads++
	if m.rep.Kind == "" {
		return page.FromRecords(m.kind, nil), nil
	}
	return m.rep, nil
}

func (m *MockStore) Save(ctx context.Context, rep page.Representation) error {
	m.saves++
	m.rep = rep
	return nil
}

func (m *MockStore) Close() error { return nil }

// MockNotifier records messages and fails those matching failOn
type MockNotifier struct {
	mu       sync.Mutex
	messages []string
	failOn   string
}

var _ notifier.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(message, m.failOn) {
		return apperrors.NewNotification("mock", "send failed", nil)
	}
	m.messages = append(m.messages, message)
	return nil
}

// MockGuard remembers marked messages
type MockGuard struct {
	seen map[string]bool
}

func (m *MockGuard) Seen(chatID, message string) bool { return m.seen[chatID+message] }
func (m *MockGuard) Mark(chatID, message string)      { m.seen[chatID+message] = true }

// MockPublisher collects published events
type MockPublisher struct {
	events []page.ChangeEvent
	err    error
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event page.ChangeEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func testConfig(strategy config.Strategy) *config.Config {
	return &config.Config{
		FetchURL:         "http://example.test/",
		NotifyChatID:     "chat",
		Strategy:         strategy,
		LinkPolicy:       config.PolicyAccumulate,
		SummaryThreshold: 10,
	}
}

func linksPage(paths ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, p := range paths {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, p, p)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestRunOnceLinksLifecycle(t *testing.T) {
	ctx := context.Background()
	fetcher := &MockFetcher{body: linksPage("/a")}
	store := &MockStore{kind: page.KindLinks}
	n := &MockNotifier{}
	w := NewWorker(testConfig(config.StrategyLinks), fetcher, extractor.NewLinkSetExtractor(nil), store, n)

	// First run stores the baseline silently
	result, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, result.Baseline)
	assert.False(t, result.Changed)
	assert.True(t, result.Persisted)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, n.messages)
	assert.Equal(t, []string{"http://example.test/a"}, store.rep.Links)

	// A new link produces exactly one message
	fetcher.body = linksPage("/a", "/b")
	result, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Notified)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "http://example.test/b")
	assert.Equal(t, []string{"http://example.test/a", "http://example.test/b"}, store.rep.Links)

	// Running again on the same page sends nothing and does not rewrite state
	saves := store.saves
	result, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 0, result.Notified)
	assert.False(t, result.Persisted)
	assert.Len(t, n.messages, 1)
	assert.Equal(t, saves, store.saves)
}

func TestRunOnceHashUnchanged(t *testing.T) {
	ctx := context.Background()
	body := "<html><body><main><p>Hello</p></main></body></html>"
	ext := extractor.NewHashExtractor()
	store := &MockStore{kind: page.KindDigest, rep: ext.Extract([]byte(body), "http://example.test/")}
	n := &MockNotifier{}

	w := NewWorker(testConfig(config.StrategyHash), &MockFetcher{body: body}, ext, store, n)
	result, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, n.messages)
	assert.Zero(t, store.saves)

	// Different content triggers one page-changed message
	w = NewWorker(testConfig(config.StrategyHash), &MockFetcher{body: strings.Replace(body, "Hello", "Bye", 1)}, ext, store, n)
	result, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "Page changed")
	assert.Equal(t, 1, store.saves)
}

func TestRunOnceNotifyFailureSkipsPersist(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{kind: page.KindLinks, rep: page.NewLinkSet([]string{"http://example.test/a"})}
	n := &MockNotifier{failOn: "/b"}
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{body: linksPage("/a", "/b")}, extractor.NewLinkSetExtractor(nil), store, n)

	_, err := w.RunOnce(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotification, apperrors.TypeOf(err))
	assert.Zero(t, store.saves)
	assert.Equal(t, []string{"http://example.test/a"}, store.rep.Links)

	// Once delivery works the link is reported again and stored
	n.failOn = ""
	result, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, []string{"http://example.test/a", "http://example.test/b"}, store.rep.Links)
}

func TestRunOnceFetchErrorLeavesStateUntouched(t *testing.T) {
	store := &MockStore{kind: page.KindLinks, rep: page.NewLinkSet([]string{"http://example.test/a"})}
	n := &MockNotifier{}
	fetchErr := apperrors.NewFetch("http://example.test/", "unexpected status code: 503", nil)
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{err: fetchErr}, extractor.NewLinkSetExtractor(nil), store, n)

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeFetch))
	assert.Zero(t, store.loads)
	assert.Zero(t, store.saves)
	assert.Empty(t, n.messages)
}

func TestRunOnceEmptyPageIsNoChange(t *testing.T) {
	store := &MockStore{kind: page.KindLinks, rep: page.NewLinkSet([]string{"http://example.test/a"})}
	n := &MockNotifier{}
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{body: "<html><body></body></html>"}, extractor.NewLinkSetExtractor(nil), store, n)

	result, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Zero(t, store.saves)
	assert.Empty(t, n.messages)
}

func TestRunOnceGuardSkipsDeliveredMessages(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{kind: page.KindLinks, rep: page.NewLinkSet([]string{"http://example.test/a"})}
	n := &MockNotifier{failOn: "/c"}
	guard := &MockGuard{seen: map[string]bool{}}
	pub := &MockPublisher{}
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{body: linksPage("/a", "/b", "/c")}, extractor.NewLinkSetExtractor(nil), store, n,
		WithGuard(guard), WithPublisher(pub))

	_, err := w.RunOnce(ctx)
	require.Error(t, err)
	require.Len(t, n.messages, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{"http://example.test/b"}, pub.events[0].Links)

	// The retry only sends the message that failed
	n.failOn = ""
	result, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Notified)
	require.Len(t, n.messages, 2)
	assert.Contains(t, n.messages[1], "http://example.test/c")
	assert.True(t, result.Persisted)
}

func TestRunOncePublisherFailureIsNotFatal(t *testing.T) {
	store := &MockStore{kind: page.KindLinks, rep: page.NewLinkSet([]string{"http://example.test/a"})}
	pub := &MockPublisher{err: errors.New("redis down")}
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{body: linksPage("/a", "/b")}, extractor.NewLinkSetExtractor(nil), store, &MockNotifier{},
		WithPublisher(pub))

	result, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Persisted)
}

func TestWatchRejectsInvalidSchedule(t *testing.T) {
	w := NewWorker(testConfig(config.StrategyLinks), &MockFetcher{}, extractor.NewLinkSetExtractor(nil), &MockStore{kind: page.KindLinks}, &MockNotifier{})
	err := w.Watch(context.Background(), "not a schedule")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))
}

func TestWatchRunsUntilCancelled(t *testing.T) {
	fetcher := &MockFetcher{body: linksPage("/a")}
	store := &MockStore{kind: page.KindLinks}
	w := NewWorker(testConfig(config.StrategyLinks), fetcher, extractor.NewLinkSetExtractor(nil), store, &MockNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Watch(ctx, "@every 1h"))
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, store.saves)
}

func TestCronLoggerWritesThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf)
	defer logger.Init()

	cl := cronLogger{log: logger.ForComponent("worker")}
	cl.Error(errors.New("boom"), "panic", "entry", 1)

	out := buf.String()
	assert.Contains(t, out, "panic")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "entry=1")
}
