// Package uiconfig holds the UI options of the wallet front-end and keeps them
// in sync with persistent storage.
//
// A Store starts from DefaultOptions, loads the persisted record once in the
// background, and writes the whole record back after every mutation without
// waiting for the write to finish.
package uiconfig

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ihatemodels/wprefs/internal/store"
	"github.com/ihatemodels/wprefs/internal/task"
)

// OptionsKey is the storage key of the options record.
const OptionsKey = "options"

// KVStore is the persistence port. Get returns store.ErrNotFound when key
// has never been written.
type KVStore interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
}

// ThemeApplier reflects the dark-mode flag onto the active document.
type ThemeApplier interface {
	Apply(isDark bool)
}

// Listener is notified with a snapshot after every change.
type Listener func(Options)

// Store owns the options record.
type Store struct {
	kv      KVStore
	applier ThemeApplier
	logger  *log.Logger
	tasks   *task.Runner

	// applyMu orders dark-mode writes with their theme application, so the
	// last palette applied always matches the flag.
	applyMu sync.Mutex

	mu      sync.Mutex
	options Options

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	loaded chan struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report failed loads and saves.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunner sets the runner that executes load and save tasks.
func WithRunner(r *task.Runner) Option {
	return func(s *Store) {
		if r != nil {
			s.tasks = r
		}
	}
}

// New returns a Store holding the default options and starts loading the
// persisted record. It does not wait for the load. applier may be nil.
func New(kv KVStore, applier ThemeApplier, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		applier:   applier,
		logger:    log.Default(),
		options:   DefaultOptions(),
		listeners: make(map[int]Listener),
		loaded:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tasks == nil {
		s.tasks = task.NewRunner(context.Background(), s.reportFailure)
	}

	s.tasks.Go("load", s.load)
	return s
}

func (s *Store) reportFailure(name string, err error) {
	s.logger.Warn("ui config task failed", "task", name, "error", err)
}

// load merges the persisted record over the current options. Fields present
// in storage win, even over a setter that ran before the load finished.
func (s *Store) load(ctx context.Context) error {
	defer close(s.loaded)

	var rec Record
	if err := s.kv.Get(ctx, OptionsKey, &rec); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		rec = Record{}
	}

	s.applyMu.Lock()
	s.mu.Lock()
	prev := s.options
	s.options = prev.Merge(rec)
	next := s.options
	s.mu.Unlock()

	if next.ShowDarkMode != prev.ShowDarkMode {
		s.applyTheme(next.ShowDarkMode)
	}
	s.applyMu.Unlock()
	s.logger.Debug("ui config loaded",
		"showAdvancedIBCTransfer", next.ShowAdvancedIBCTransfer,
		"showDarkMode", next.ShowDarkMode)
	s.notify(next)
	return nil
}

// Loaded is closed once the initial load has finished, whether or not it
// succeeded.
func (s *Store) Loaded() <-chan struct{} {
	return s.loaded
}

// Options returns a copy of the current options.
func (s *Store) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// ShowAdvancedIBCTransfer reports whether the advanced IBC transfer UI is on.
func (s *Store) ShowAdvancedIBCTransfer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options.ShowAdvancedIBCTransfer
}

// ShowDarkMode reports whether the dark palette is selected.
func (s *Store) ShowDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options.ShowDarkMode
}

// SetShowAdvancedIBCTransfer updates the flag and schedules a save.
func (s *Store) SetShowAdvancedIBCTransfer(value bool) {
	s.mu.Lock()
	s.options.ShowAdvancedIBCTransfer = value
	next := s.options
	s.mu.Unlock()

	s.notify(next)
	s.saveAsync()
}

// SetDarkMode updates the flag, re-applies the theme and schedules a save.
// The theme is applied on every call, including when value is unchanged.
func (s *Store) SetDarkMode(value bool) {
	s.applyMu.Lock()
	s.mu.Lock()
	s.options.ShowDarkMode = value
	next := s.options
	s.mu.Unlock()

	s.applyTheme(value)
	s.applyMu.Unlock()

	s.notify(next)
	s.saveAsync()
}

func (s *Store) applyTheme(isDark bool) {
	if s.applier != nil {
		s.applier.Apply(isDark)
	}
}

func (s *Store) saveAsync() {
	s.tasks.Go("save", s.Save)
}

// Save writes the full options record under OptionsKey, replacing whatever
// was stored before.
func (s *Store) Save(ctx context.Context) error {
	rec := s.Options().Record()
	return s.kv.Set(ctx, OptionsKey, rec)
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func removes the registration.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) notify(o Options) {
	s.lmu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	// Deliver in registration order.
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(o)
	}
}

// Close waits for the load and every scheduled save to return. It is meant
// for process shutdown; setters never call it.
func (s *Store) Close() error {
	s.tasks.Wait()
	return nil
}

// Pending reports how many load/save tasks are still running.
func (s *Store) Pending() int {
	return s.tasks.Stats().Pending
}
