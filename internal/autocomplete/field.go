// Package autocomplete implements a debounced search-as-you-type field.
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is the trailing debounce applied to keystrokes
const DefaultDelay = 300 * time.Millisecond

// Item is a selectable search result
type Item interface {
	Key() string
	Display() string
}

// SearchFunc runs one lookup. It is called from the field's timer goroutine.
type SearchFunc[T Item] func(ctx context.Context, query string) ([]T, error)

// Messages are shown under the field after a search
type Messages struct {
	NoResults string
	Failed    string
}

// Options configures a Field
type Options struct {
	Delay time.Duration
	// MinLength is the shortest trimmed query that triggers a search. Zero
	// searches on every change, including an empty query.
	MinLength int
	Messages  Messages
	// Enabled reports whether the field's scope is set (e.g. a parent city is
	// selected). A nil Enabled means always enabled.
	Enabled func() bool
	Logger  *zap.Logger
}

// State is a point-in-time copy of a field
type State[T Item] struct {
	Query    string
	Results  []T
	Loading  bool
	Error    string
	Selected *T
}

// Field holds the query, results and selection of one autocomplete input.
//
// Each scheduled search gets a sequence number. Scheduling again, selecting or
// closing bumps the number, which stops the pending timer, cancels an in-flight
// lookup and makes any late response from it a no-op.
type Field[T Item] struct {
	name   string
	search SearchFunc[T]
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	cancel   context.CancelFunc
	seq      uint64
	query    string
	results  []T
	loading  bool
	errMsg   string
	selected *T
	closed   bool
}

// New creates a field named name (used in logs)
func New[T Item](name string, search SearchFunc[T], opts Options) *Field[T] {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Field[T]{
		name:   name,
		search: search,
		opts:   opts,
		logger: logger.With(zap.String("field", name)),
	}
}

// Type records a keystroke. Typing over a selected value clears the
// selection; the return value reports whether that happened.
func (f *Field[T]) Type(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.query = query
	cleared := false
	if f.selected != nil && query != (*f.selected).Display() {
		f.selected = nil
		cleared = true
	}
	f.scheduleLocked()
	return cleared
}

// Select sets or, with nil, clears the selection
func (f *Field[T]) Select(item *T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if item == nil {
		f.selected = nil
		f.query = ""
		f.scheduleLocked()
		return
	}

	f.invalidateLocked()
	selected := *item
	f.selected = &selected
	f.query = selected.Display()
	f.results = nil
	f.loading = false
	f.errMsg = ""
}

// SelectKey selects the current result whose Key equals key
func (f *Field[T]) SelectKey(key string) (T, bool) {
	f.mu.Lock()
	var (
		found T
		ok    bool
	)
	for _, r := range f.results {
		if r.Key() == key {
			found, ok = r, true
			break
		}
	}
	f.mu.Unlock()

	if ok {
		f.Select(&found)
	}
	return found, ok
}

// Refresh re-runs the current query, typically after the scope changed
func (f *Field[T]) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleLocked()
}

// Selected returns a copy of the selection, or nil
func (f *Field[T]) Selected() *T {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return nil
	}
	s := *f.selected
	return &s
}

// Snapshot returns the current state
func (f *Field[T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := State[T]{
		Query:   f.query,
		Loading: f.loading,
		Error:   f.errMsg,
	}
	if len(f.results) > 0 {
		st.Results = append([]T(nil), f.results...)
	}
	if f.selected != nil {
		s := *f.selected
		st.Selected = &s
	}
	return st
}

// Close stops pending and in-flight searches. The field keeps its state.
func (f *Field[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.invalidateLocked()
	f.loading = false
}

func (f *Field[T]) scheduleLocked() {
	f.invalidateLocked()

	if f.closed || f.selected != nil || !f.enabled() || f.tooShort(f.query) {
		f.results = nil
		f.loading = false
		f.errMsg = ""
		return
	}

	f.loading = true
	f.errMsg = ""
	seq, query := f.seq, f.query
	f.timer = time.AfterFunc(f.opts.Delay, func() { f.run(seq, query) })
}

// invalidateLocked stops the pending timer, cancels the in-flight lookup and
// advances the sequence so stale responses are dropped.
func (f *Field[T]) invalidateLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
}

func (f *Field[T]) run(seq uint64, query string) {
	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.timer = nil
	f.mu.Unlock()

	results, err := f.search(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	cancel()
	if seq != f.seq {
		f.logger.Debug("Dropping stale search response", zap.String("query", query))
		return
	}
	f.cancel = nil
	f.loading = false

	if err != nil {
		f.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
		f.results = nil
		f.errMsg = f.opts.Messages.Failed
		return
	}

	f.results = results
	if len(results) == 0 {
		f.errMsg = f.opts.Messages.NoResults
	}
}

func (f *Field[T]) enabled() bool {
	return f.opts.Enabled == nil || f.opts.Enabled()
}

func (f *Field[T]) tooShort(query string) bool {
	if f.opts.MinLength <= 0 {
		return false
	}
	return len([]rune(strings.TrimSpace(query))) < f.opts.MinLength
}
