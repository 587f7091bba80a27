// Package watcher re-reviews a Python file whenever it changes on disk and
// emits alerts for results that appeared or were resolved since the last
// review.
package watcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dhirajnair/pspec/internal/review"
)

// WatchState is the outcome of reviewing the file at one point in time.
type WatchState struct {
	Timestamp time.Time
	ModTime   time.Time
	Size      int64
	RunID     string
	Items     map[string]review.Item // Item.Key() -> item

	result *review.Result
}

// Result returns the review behind the state.
func (s *WatchState) Result() *review.Result {
	return s.result
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher polls one file at a regular interval and emits alerts when a
// change to the file changes its review.
type Watcher struct {
	path          string
	interval      time.Duration
	opts          review.Options
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// OnReview, when set, receives the source and result of every review
	// the watcher runs.
	OnReview func(source string, res *review.Result)
}

// New creates a Watcher for the file at path.
func New(path string, interval time.Duration, opts review.Options, alertFn func(Alert)) *Watcher {
	return &Watcher{
		path:          path,
		interval:      interval,
		opts:          opts,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Baseline reviews the file once and records it as the previous state.
func (w *Watcher) Baseline(ctx context.Context) (*WatchState, error) {
	state, err := w.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = state
	return state, nil
}

// Run starts the watch loop. It takes a baseline when none exists, then
// checks at every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.previous == nil {
		if _, err := w.Baseline(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle. An unchanged modification time and
// size skip the review. Otherwise the file is reviewed, compared against the
// previous state, and any alerts returned. Identical alerts are suppressed
// until the underlying results change.
func (w *Watcher) Check(ctx context.Context) []Alert {
	info, err := os.Stat(w.path)
	if err == nil && w.previous != nil &&
		info.ModTime().Equal(w.previous.ModTime) && info.Size() == w.previous.Size {
		return nil
	}

	curr, err := w.Snapshot(ctx)
	if err != nil {
		return w.dedupe([]Alert{{
			Level:   "warning",
			Title:   "Review failed",
			Message: err.Error(),
			Time:    time.Now(),
		}})
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}
	w.previous = curr
	return w.dedupe(raw)
}

func (w *Watcher) dedupe(raw []Alert) []Alert {
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys
	return alerts
}

// Snapshot reads and reviews the file.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", w.path, err)
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.path, err)
	}

	res, err := review.Run(ctx, string(data), w.opts)
	if err != nil {
		return nil, fmt.Errorf("reviewing %s: %w", w.path, err)
	}
	if w.OnReview != nil {
		w.OnReview(string(data), res)
	}

	state := &WatchState{
		Timestamp: time.Now(),
		ModTime:   info.ModTime(),
		Size:      info.Size(),
		RunID:     res.RunID,
		Items:     make(map[string]review.Item),
		result:    res,
	}
	for _, it := range res.Items() {
		state.Items[it.Key()] = it
	}
	return state, nil
}
