// Package worker runs the fetch, extract, compare, notify and persist
// pipeline, once or on a schedule.
package worker

import (
	"context"
	"errors"
	"time"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/internal/extractor"
	"sjsage522/pagewatch/internal/page"
	"sjsage522/pagewatch/logger"
	apperrors "sjsage522/pagewatch/pkg/errors"
	"sjsage522/pagewatch/services/notifier"
	"sjsage522/pagewatch/services/publisher"
	"sjsage522/pagewatch/services/state"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Fetcher retrieves the raw page body
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Guard suppresses messages that were already delivered
type Guard interface {
	Seen(chatID, message string) bool
	Mark(chatID, message string)
}

// Result summarizes one run
type Result struct {
	RunID     string
	Baseline  bool
	Changed   bool
	Notified  int
	Persisted bool
}

// Worker handles the monitoring process for one target
type Worker struct {
	cfg       *config.Config
	fetcher   Fetcher
	extractor extractor.Extractor
	store     state.Store
	notifier  notifier.Notifier
	guard     Guard
	publisher publisher.Publisher
	now       func() time.Time
}

// Option configures optional worker collaborators
type Option func(*Worker)

// WithGuard skips messages the guard has already seen
func WithGuard(g Guard) Option {
	return func(w *Worker) { w.guard = g }
}

// WithPublisher mirrors delivered events to p
func WithPublisher(p publisher.Publisher) Option {
	return func(w *Worker) { w.publisher = p }
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	fetcher Fetcher,
	ext extractor.Extractor,
	store state.Store,
	n notifier.Notifier,
	opts ...Option,
) *Worker {
	w := &Worker{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: ext,
		store:     store,
		notifier:  n,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RunOnce performs a single check. State is saved only after every
// message of the run was delivered, so a failed run is retried in full.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	log := logger.ForRun(result.RunID, w.cfg.FetchURL)
	start := w.now()

	body, err := w.fetcher.Fetch(ctx, w.cfg.FetchURL)
	if err != nil {
		log.Error().Err(err).Msg("Fetch failed; state left untouched")
		return result, err
	}

	current := w.extractor.Extract(body, w.cfg.FetchURL)
	if current.IsZero() {
		log.Warn().Str("extractor", w.extractor.GetName()).Msg("Extraction yielded no data")
	}

	previous, err := w.store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load previous state")
		return result, err
	}

	change := page.Compare(previous, current, page.CompareOptions{
		Accumulate:       w.cfg.LinkPolicy == config.PolicyAccumulate,
		NotifyOnFirstRun: w.cfg.NotifyOnFirstRun,
	})
	result.Baseline = change.Baseline
	result.Changed = change.Changed

	events := notifier.BuildEvents(change, w.cfg.FetchURL, w.cfg.SummaryThreshold, w.now())

	var errs []error
	for _, event := range events {
		if w.guard != nil && w.guard.Seen(w.cfg.NotifyChatID, event.Message) {
			log.Debug().Strs("links", event.Links).Msg("Message already delivered; skipping")
			result.Notified++
			continue
		}

		if err := w.notifier.Notify(ctx, event.Message); err != nil {
			errs = append(errs, err)
			continue
		}
		result.Notified++

		if w.guard != nil {
			w.guard.Mark(w.cfg.NotifyChatID, event.Message)
		}
		w.publish(ctx, log, event)
	}

	if len(errs) > 0 {
		log.Error().
			Int("failed", len(errs)).
			Int("sent", result.Notified).
			Msg("Notification failed; state not saved")
		return result, errors.Join(errs...)
	}

	if change.Persist {
		if err := w.store.Save(ctx, change.Next); err != nil {
			log.Error().Err(err).Msg("Failed to save state")
			return result, err
		}
		result.Persisted = true
	}

	status := log.Info().
		Str("kind", string(change.Kind)).
		Int("notified", result.Notified).
		Bool("persisted", result.Persisted).
		Dur("elapsed", w.now().Sub(start))
	switch {
	case result.Baseline && !result.Changed && result.Persisted:
		status.Msg("BASELINE: state initialized")
	case result.Changed:
		status.Int("new_links", len(change.NewLinks)).Msg("CHANGED")
	default:
		status.Msg("NO CHANGE")
	}

	return result, nil
}

// publish mirrors an event to the stream; failures do not affect the run
func (w *Worker) publish(ctx context.Context, log *logger.Logger, event page.ChangeEvent) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("Failed to publish change event")
	}
}

// Watch runs a check immediately and then on schedule until ctx is done.
// A run still in progress when the next one is due causes that one to be skipped.
func (w *Worker) Watch(ctx context.Context, schedule string) error {
	log := logger.ForComponent("worker")
	cl := cronLogger{log: log}

	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	job := cron.FuncJob(func() {
		// Errors are already logged by RunOnce
		w.RunOnce(ctx)
	})
	if _, err := c.AddJob(schedule, job); err != nil {
		return apperrors.NewConfiguration("invalid WATCH_SCHEDULE "+schedule, err)
	}

	log.Info().Str("schedule", schedule).Msg("Starting watch")
	w.RunOnce(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	log.Info().Msg("Watch stopped")
	return nil
}

// cronLogger adapts the structured logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).Error().Fields(keysAndValues).Msg(msg)
}
