package uiconfig

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihatemodels/wprefs/internal/store"
	"github.com/ihatemodels/wprefs/internal/task"
	"github.com/ihatemodels/wprefs/internal/theme"
)

// gatedKV wraps a Memory store and lets tests hold reads and writes until
// they choose to release them.
type gatedKV struct {
	*store.Memory

	getGate chan struct{}
	setGate chan struct{}
	getErr  error
	setErr  error

	mu   sync.Mutex
	sets int
}

func newGatedKV() *gatedKV {
	return &gatedKV{Memory: store.NewMemory()}
}

func (g *gatedKV) Get(ctx context.Context, key string, v any) error {
	if g.getGate != nil {
		<-g.getGate
	}
	if g.getErr != nil {
		return g.getErr
	}
	return g.Memory.Get(ctx, key, v)
}

func (g *gatedKV) Set(ctx context.Context, key string, v any) error {
	if g.setGate != nil {
		<-g.setGate
	}
	g.mu.Lock()
	g.sets++
	g.mu.Unlock()
	if g.setErr != nil {
		return g.setErr
	}
	return g.Memory.Set(ctx, key, v)
}

func (g *gatedKV) setCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sets
}

func (g *gatedKV) seed(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, g.Memory.Set(context.Background(), OptionsKey, v))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func waitLoaded(t *testing.T, s *Store) {
	t.Helper()
	select {
	case <-s.Loaded():
	case <-time.After(5 * time.Second):
		t.Fatal("store did not finish loading")
	}
}

func storedRecord(t *testing.T, m *store.Memory) map[string]bool {
	t.Helper()
	raw, ok := m.Raw(OptionsKey)
	require.True(t, ok, "options record was never written")
	var out map[string]bool
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestNewStoreReportsDefaultsBeforeLoad(t *testing.T) {
	kv := newGatedKV()
	kv.getGate = make(chan struct{})
	kv.seed(t, map[string]bool{"showAdvancedIBCTransfer": true, "showDarkMode": true})

	s := New(kv, nil, WithLogger(quietLogger()))

	assert.False(t, s.ShowAdvancedIBCTransfer())
	assert.False(t, s.ShowDarkMode())
	assert.Equal(t, DefaultOptions(), s.Options())

	close(kv.getGate)
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.True(t, s.ShowAdvancedIBCTransfer())
	assert.True(t, s.ShowDarkMode())
}

func TestLoadPartialRecordKeepsDefaults(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]bool{"showDarkMode": true})

	s := New(kv, nil, WithLogger(quietLogger()))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.True(t, s.ShowDarkMode())
	assert.False(t, s.ShowAdvancedIBCTransfer())
}

func TestLoadMissingRecord(t *testing.T) {
	kv := newGatedKV()

	s := New(kv, nil, WithLogger(quietLogger()))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.Equal(t, DefaultOptions(), s.Options())
	assert.Equal(t, 0, kv.setCount(), "loading must not write")
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]any{"showAdvancedIBCTransfer": true, "language": "en"})

	s := New(kv, nil, WithLogger(quietLogger()))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.True(t, s.ShowAdvancedIBCTransfer())
	assert.False(t, s.ShowDarkMode())
}

func TestSetShowAdvancedIBCTransfer(t *testing.T) {
	kv := newGatedKV()
	s := New(kv, nil, WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetShowAdvancedIBCTransfer(true)
	assert.True(t, s.ShowAdvancedIBCTransfer(), "setter must update state synchronously")

	require.NoError(t, s.Close())
	assert.Equal(t, map[string]bool{
		"showAdvancedIBCTransfer": true,
		"showDarkMode":            false,
	}, storedRecord(t, kv.Memory))
}

func TestSetterDoesNotWaitForSave(t *testing.T) {
	kv := newGatedKV()
	s := New(kv, nil, WithLogger(quietLogger()))
	require.NoError(t, s.Close())
	kv.setGate = make(chan struct{})

	done := make(chan struct{})
	go func() {
		s.SetShowAdvancedIBCTransfer(true)
		s.SetDarkMode(true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("setters blocked on a pending save")
	}
	assert.Equal(t, 2, s.Pending())

	close(kv.setGate)
	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Pending())
}

func TestSettingSameValueStillSaves(t *testing.T) {
	kv := newGatedKV()
	s := New(kv, nil, WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetShowAdvancedIBCTransfer(false)
	s.SetShowAdvancedIBCTransfer(false)
	s.SetDarkMode(false)
	require.NoError(t, s.Close())

	assert.Equal(t, 3, kv.setCount())
}

func TestSetDarkModeTwiceLeavesOneDarkBlock(t *testing.T) {
	sheet := theme.NewSheet()
	s := New(newGatedKV(), theme.NewApplier(sheet), WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetDarkMode(true)
	s.SetDarkMode(true)
	require.NoError(t, s.Close())

	blocks := sheet.QueryByClass(theme.Marker)
	require.Len(t, blocks, 1)
	all := sheet.Blocks()
	assert.Equal(t, theme.CSS(theme.Dark), all[len(all)-1].Text())
}

func TestSetDarkModeThenLightLeavesOneLightBlock(t *testing.T) {
	sheet := theme.NewSheet("body {margin: 0;}")
	s := New(newGatedKV(), theme.NewApplier(sheet), WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetDarkMode(true)
	s.SetDarkMode(false)
	require.NoError(t, s.Close())

	require.Len(t, sheet.QueryByClass(theme.Marker), 1)
	all := sheet.Blocks()
	last := all[len(all)-1]
	assert.True(t, last.HasClass(theme.Marker))
	assert.Equal(t, theme.CSS(theme.Light), last.Text())
	assert.False(t, s.ShowDarkMode())
}

// countingApplier records every Apply call.
type countingApplier struct {
	mu    sync.Mutex
	calls []bool
}

func (c *countingApplier) Apply(isDark bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, isDark)
}

func (c *countingApplier) Calls() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.calls...)
}

func TestSetDarkModeAppliesEveryTime(t *testing.T) {
	applier := &countingApplier{}
	s := New(newGatedKV(), applier, WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetDarkMode(false)
	s.SetDarkMode(false)
	s.SetDarkMode(true)
	require.NoError(t, s.Close())

	assert.Equal(t, []bool{false, false, true}, applier.Calls())
}

func TestAdvancedSetterDoesNotTouchTheme(t *testing.T) {
	applier := &countingApplier{}
	s := New(newGatedKV(), applier, WithLogger(quietLogger()))
	waitLoaded(t, s)

	s.SetShowAdvancedIBCTransfer(true)
	require.NoError(t, s.Close())

	assert.Empty(t, applier.Calls())
}

func TestLoadAppliesThemeWhenFlagChanges(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]bool{"showDarkMode": true})
	applier := &countingApplier{}

	s := New(kv, applier, WithLogger(quietLogger()))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.Equal(t, []bool{true}, applier.Calls())
}

func TestLoadSkipsThemeWhenFlagUnchanged(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]bool{"showDarkMode": false, "showAdvancedIBCTransfer": true})
	applier := &countingApplier{}

	s := New(kv, applier, WithLogger(quietLogger()))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.Empty(t, applier.Calls())
}

// stallingApplier holds its first Apply call until release is closed.
type stallingApplier struct {
	inner   *theme.Applier
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	calls []bool
}

func newStallingApplier(doc theme.Document) *stallingApplier {
	return &stallingApplier{
		inner:   theme.NewApplier(doc),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (a *stallingApplier) Apply(isDark bool) {
	first := false
	a.once.Do(func() { first = true })
	if first {
		close(a.entered)
		<-a.release
	}

	a.mu.Lock()
	a.calls = append(a.calls, isDark)
	a.mu.Unlock()
	a.inner.Apply(isDark)
}

func (a *stallingApplier) last() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[len(a.calls)-1]
}

func TestSetDarkModeDuringLoadThemeKeepsFlagAndThemeInSync(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]bool{"showDarkMode": true})
	sheet := theme.NewSheet()
	applier := newStallingApplier(sheet)

	s := New(kv, applier, WithLogger(quietLogger()))

	// The load is now applying the stored dark palette.
	select {
	case <-applier.entered:
	case <-time.After(time.Second):
		t.Fatal("load never applied the theme")
	}

	setDone := make(chan struct{})
	go func() {
		s.SetDarkMode(false)
		close(setDone)
	}()
	time.Sleep(20 * time.Millisecond)
	close(applier.release)

	<-setDone
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.False(t, s.ShowDarkMode())
	assert.False(t, applier.last(), "last applied palette must match the flag")

	blocks := sheet.QueryByClass(theme.Marker)
	require.Len(t, blocks, 1)
	assert.Equal(t, theme.CSS(theme.Light), sheet.String())
}

func TestRoundTripThroughStorage(t *testing.T) {
	backends := map[string]func(t *testing.T) store.KV{
		"memory": func(t *testing.T) store.KV { return store.NewMemory() },
		"file": func(t *testing.T) store.KV {
			s, err := store.NewFile(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"bolt": func(t *testing.T) store.KV {
			s, err := store.NewBolt(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			first := New(kv, nil, WithLogger(quietLogger()))
			require.NoError(t, first.Close())

			// Saves are unsequenced; wait after each one so the last
			// setter is also the last write.
			first.SetShowAdvancedIBCTransfer(true)
			require.NoError(t, first.Close())
			first.SetDarkMode(true)
			require.NoError(t, first.Close())
			first.SetShowAdvancedIBCTransfer(false)
			require.NoError(t, first.Close())

			second := New(kv, nil, WithLogger(quietLogger()))
			waitLoaded(t, second)
			require.NoError(t, second.Close())

			assert.Equal(t, first.Options(), second.Options())
		})
	}
}

func TestPersistedValueWinsOverEarlyMutation(t *testing.T) {
	kv := newGatedKV()
	kv.seed(t, map[string]bool{"showDarkMode": false})
	kv.getGate = make(chan struct{})
	kv.setGate = make(chan struct{})

	sheet := theme.NewSheet()
	s := New(kv, theme.NewApplier(sheet), WithLogger(quietLogger()))

	// Both mutations land before the load's read returns.
	s.SetDarkMode(true)
	s.SetShowAdvancedIBCTransfer(true)
	assert.True(t, s.ShowDarkMode())

	close(kv.getGate)
	waitLoaded(t, s)

	// showDarkMode is present in storage, so the stale value wins.
	assert.False(t, s.ShowDarkMode())
	// showAdvancedIBCTransfer is absent, so the early mutation survives.
	assert.True(t, s.ShowAdvancedIBCTransfer())

	// The theme follows the flag.
	all := sheet.Blocks()
	require.Len(t, sheet.QueryByClass(theme.Marker), 1)
	assert.Equal(t, theme.CSS(theme.Light), all[len(all)-1].Text())

	// The saves queued before the load snapshot their own state; the load
	// does not schedule another one.
	close(kv.setGate)
	require.NoError(t, s.Close())
	assert.Equal(t, 2, kv.setCount())
}

type hookRecorder struct {
	mu     sync.Mutex
	failed map[string]error
}

func (h *hookRecorder) hook(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failed == nil {
		h.failed = make(map[string]error)
	}
	h.failed[name] = err
}

func (h *hookRecorder) get(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failed[name]
}

func TestLoadFailureKeepsDefaults(t *testing.T) {
	readErr := errors.New("disk on fire")
	kv := newGatedKV()
	kv.getErr = readErr

	rec := &hookRecorder{}
	s := New(kv, nil,
		WithLogger(quietLogger()),
		WithRunner(task.NewRunner(context.Background(), rec.hook)))
	waitLoaded(t, s)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, rec.get("load"), readErr)
	assert.Equal(t, DefaultOptions(), s.Options())

	// The store keeps working on its defaults.
	s.SetDarkMode(true)
	assert.True(t, s.ShowDarkMode())
	require.NoError(t, s.Close())
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	writeErr := errors.New("read-only filesystem")
	kv := newGatedKV()
	kv.setErr = writeErr

	rec := &hookRecorder{}
	s := New(kv, nil,
		WithLogger(quietLogger()),
		WithRunner(task.NewRunner(context.Background(), rec.hook)))
	waitLoaded(t, s)

	s.SetShowAdvancedIBCTransfer(true)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, rec.get("save"), writeErr)
	assert.True(t, s.ShowAdvancedIBCTransfer())
	_, written := kv.Memory.Raw(OptionsKey)
	assert.False(t, written)
}

func TestSubscribe(t *testing.T) {
	kv := newGatedKV()
	kv.getGate = make(chan struct{})
	s := New(kv, nil, WithLogger(quietLogger()))

	var (
		mu  sync.Mutex
		got []Options
	)
	unsubscribe := s.Subscribe(func(o Options) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, o)
	})

	s.SetShowAdvancedIBCTransfer(true)
	close(kv.getGate)
	waitLoaded(t, s)
	s.SetDarkMode(true)

	unsubscribe()
	unsubscribe()
	s.SetDarkMode(false)
	require.NoError(t, s.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, Options{ShowAdvancedIBCTransfer: true}, got[0])
	assert.Equal(t, Options{ShowAdvancedIBCTransfer: true}, got[1], "load notifies with the merged record")
	assert.Equal(t, Options{ShowAdvancedIBCTransfer: true, ShowDarkMode: true}, got[2])
}

func TestSubscribeOrder(t *testing.T) {
	s := New(newGatedKV(), nil, WithLogger(quietLogger()))
	waitLoaded(t, s)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.Subscribe(func(Options) { order = append(order, i) })
	}
	s.SetDarkMode(true)
	require.NoError(t, s.Close())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestOptionsReturnsCopy(t *testing.T) {
	s := New(newGatedKV(), nil, WithLogger(quietLogger()))
	waitLoaded(t, s)

	o := s.Options()
	o.ShowDarkMode = true
	require.NoError(t, s.Close())

	assert.False(t, s.ShowDarkMode())
}
