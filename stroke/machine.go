package stroke

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/paintcore"
	"github.com/gogpu/paintcore/accum"
	"github.com/gogpu/paintcore/brush"
)

// State is the stroke lifecycle state.
type State uint8

const (
	// StateIdle means no stroke is in progress.
	StateIdle State = iota

	// StateStarting means a Down was accepted and the asynchronous
	// accumulator begin is in flight. Samples buffer until it resolves.
	StateStarting

	// StateActive means dabs are being accumulated.
	StateActive

	// StateFinishing means the stroke is draining and committing.
	StateFinishing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateFinishing:
		return "finishing"
	default:
		return "idle"
	}
}

// UndoRecord describes one committed stroke for the undo collaborator.
// Before holds the layer pixels as they were when the stroke began.
type UndoRecord struct {
	Session uuid.UUID
	Layer   paintcore.LayerID
	Before  *paintcore.Pixmap
	Dirty   paintcore.Rect
}

// UndoSink receives a record for every committed stroke.
type UndoSink func(UndoRecord)

// Machine drives the stroke lifecycle. All entry points serialize on
// one mutex, so the machine behaves as the single logical drawing
// thread even though the accumulator begin resolves on its own
// goroutine.
//
// The tolerance rule for the asynchronous begin: every sample that
// arrives while Starting is buffered and replayed in arrival order
// once the begin resolves. No sample is dropped, and an Up during
// Starting finishes the stroke immediately after activation.
type Machine struct {
	mu sync.Mutex
	wg sync.WaitGroup

	sel     *accum.Selector
	engine  *brush.Engine
	layers  paintcore.LayerStore
	queue   *FrameQueue
	tracker *Tracker
	diag    paintcore.Diagnostics
	undo    UndoSink

	layer   paintcore.LayerID
	opacity float32
	mode    accum.CompositeMode

	state      State
	session    *Session
	before     *paintcore.Pixmap
	pending    []paintcore.InputSample
	pendingEnd bool
	beginGen   uint64
	frameDirty paintcore.Rect

	suppressionOverride *time.Duration
}

// Option configures a Machine.
type Option func(*Machine)

// WithDiagnostics sets the anomaly sink.
func WithDiagnostics(d paintcore.Diagnostics) Option {
	return func(m *Machine) {
		if d != nil {
			m.diag = d
		}
	}
}

// WithUndoSink sets the undo collaborator callback.
func WithUndoSink(sink UndoSink) Option {
	return func(m *Machine) { m.undo = sink }
}

// WithQueueCapacity sizes the per-frame sample queue.
func WithQueueCapacity(n int) Option {
	return func(m *Machine) { m.queue = NewFrameQueue(n) }
}

// WithSuppressionWindow sets the duplicate-Down suppression window.
func WithSuppressionWindow(w time.Duration) Option {
	return func(m *Machine) { m.suppressionOverride = &w }
}

// WithComposite sets the stroke-level opacity ceiling and blend mode
// applied at commit.
func WithComposite(opacity float32, mode accum.CompositeMode) Option {
	return func(m *Machine) {
		m.opacity = opacity
		m.mode = mode
	}
}

// NewMachine creates a stroke machine targeting one layer of the given
// store.
func NewMachine(sel *accum.Selector, engine *brush.Engine, layers paintcore.LayerStore, layer paintcore.LayerID, opts ...Option) *Machine {
	m := &Machine{
		sel:     sel,
		engine:  engine,
		layers:  layers,
		layer:   layer,
		diag:    paintcore.NopDiagnostics{},
		opacity: 1,
		mode:    accum.ModeSourceOver,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.queue == nil {
		m.queue = NewFrameQueue(DefaultQueueCapacity)
	}
	window := DefaultSuppressionWindow
	if m.suppressionOverride != nil {
		window = *m.suppressionOverride
	}
	m.tracker = NewTracker(window, m.diag)
	return m
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the live session, or nil when idle.
func (m *Machine) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// SetLayer retargets future strokes. The active stroke, if any, keeps
// its original target.
func (m *Machine) SetLayer(id paintcore.LayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle {
		m.layer = id
	}
}

// HandleSample feeds one routed sample into the machine. It is called
// from the event-dispatch goroutine only.
func (m *Machine) HandleSample(ctx context.Context, s paintcore.InputSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateIdle:
		if s.Phase != paintcore.PhaseDown {
			return nil
		}
		return m.beginLocked(ctx, s)

	case StateStarting:
		if s.Phase == paintcore.PhaseDown && m.tracker.Duplicate(s) {
			return nil
		}
		// Never dropped: buffered until the begin resolves.
		m.pending = append(m.pending, s)
		if s.Phase == paintcore.PhaseUp {
			m.pendingEnd = true
		}
		return nil

	case StateActive:
		if s.Phase == paintcore.PhaseDown {
			if m.tracker.Duplicate(s) {
				return nil
			}
			// A superseding contact: at most one stroke is ever
			// active, so the current one commits before the new one
			// begins.
			if err := m.finishLocked(ctx); err != nil {
				return err
			}
			return m.beginLocked(ctx, s)
		}
		m.queue.Push(s)
		if s.Phase == paintcore.PhaseUp {
			return m.finishLocked(ctx)
		}
		return nil

	default:
		// Finishing runs synchronously under the mutex, so samples
		// cannot interleave with it from the dispatch goroutine.
		return nil
	}
}

// beginLocked handles Down while Idle.
func (m *Machine) beginLocked(ctx context.Context, s paintcore.InputSample) error {
	if !m.layers.IsVisible(m.layer) {
		return fmt.Errorf("stroke: begin on %q: %w", m.layer, paintcore.ErrLayerHidden)
	}
	if m.layers.IsLocked(m.layer) {
		return fmt.Errorf("stroke: begin on %q: %w", m.layer, paintcore.ErrLayerLocked)
	}
	session := m.tracker.Begin(s)
	if session == nil {
		return nil
	}

	before, err := m.layers.GetImageSnapshot(m.layer)
	if err != nil {
		m.tracker.End()
		return fmt.Errorf("stroke: layer snapshot: %w", err)
	}

	m.session = session
	m.before = before
	m.pending = append(m.pending[:0], s)
	m.pendingEnd = false
	m.state = StateStarting
	m.beginGen++

	gen := m.beginGen
	acc := m.sel.Current()
	params := accum.StrokeParams{Width: before.Width(), Height: before.Height()}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := acc.BeginStroke(ctx, params)
		m.beginResolved(ctx, gen, acc, err)
	}()
	return nil
}

// beginResolved re-enters the machine when the asynchronous accumulator
// begin completes.
func (m *Machine) beginResolved(ctx context.Context, gen uint64, acc accum.Accumulator, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.beginGen || m.state != StateStarting {
		// The stroke was aborted while the begin was in flight; an
		// accepted begin still holds the finishing lock.
		if err == nil {
			acc.Abort()
		}
		return
	}

	if err != nil {
		paintcore.Logger().Warn("stroke begin rejected",
			"backend", acc.Name(), "error", err)
		if errors.Is(err, paintcore.ErrBackendFault) {
			m.sel.Downgrade(err)
		}
		// Rejection lands back in Idle with the layer untouched; the
		// buffered samples are discarded, not replayed.
		m.resetLocked()
		return
	}

	m.state = StateActive
	replay := m.pending
	m.pending = nil
	for _, s := range replay {
		if !m.stampSampleLocked(s) {
			return
		}
	}
	if m.pendingEnd {
		m.pendingEnd = false
		_ = m.finishLocked(ctx)
	}
}

// stampSampleLocked runs one sample through the dab generator into the
// accumulator. It returns false when the stroke was torn down by a
// backend fault.
func (m *Machine) stampSampleLocked(s paintcore.InputSample) bool {
	acc := m.sel.Current()
	for _, dab := range m.engine.ProcessSample(s) {
		if err := acc.StampDab(dab); err != nil {
			m.faultLocked(acc, err)
			return false
		}
		m.frameDirty = m.frameDirty.Union(paintcore.RectAround(dab.X, dab.Y, dab.Size))
	}
	return true
}

// faultLocked aborts the stroke on a backend error. A device fault
// additionally downgrades the backend selector; the stroke itself is
// discarded either way, never replayed.
func (m *Machine) faultLocked(acc accum.Accumulator, err error) {
	paintcore.Logger().Error("stroke aborted",
		"backend", acc.Name(), "state", m.state.String(), "error", err)
	acc.Abort()
	if errors.Is(err, paintcore.ErrBackendFault) {
		m.sel.Downgrade(err)
	}
	m.resetLocked()
}

// finishLocked drains the queue, commits the stroke, and returns to
// Idle. Safe to call more than once; only the first call for a session
// commits.
func (m *Machine) finishLocked(ctx context.Context) error {
	if m.state != StateActive {
		return nil
	}
	m.state = StateFinishing
	acc := m.sel.Current()

	for _, s := range m.queue.Drain() {
		if !m.stampSampleLocked(s) {
			return paintcore.ErrBackendFault
		}
	}

	end, err := acc.PrepareEndStroke(ctx)
	if err != nil {
		m.faultLocked(acc, err)
		return err
	}

	dst, err := m.layers.GetImageSnapshot(m.layer)
	if err != nil {
		acc.Abort()
		m.resetLocked()
		return fmt.Errorf("stroke: commit snapshot: %w", err)
	}
	if err := acc.CommitAndClear(dst, m.opacity, m.mode); err != nil {
		m.faultLocked(acc, err)
		return err
	}
	if err := m.layers.SetImageSnapshot(m.layer, dst); err != nil {
		m.resetLocked()
		return fmt.Errorf("stroke: commit write: %w", err)
	}

	if m.undo != nil {
		m.undo(UndoRecord{
			Session: m.session.ID,
			Layer:   m.layer,
			Before:  m.before,
			Dirty:   end.Dirty,
		})
	}
	m.frameDirty = m.frameDirty.Union(end.Dirty)

	m.engine.Reset()
	m.before = nil
	m.session = nil
	m.pendingEnd = false
	m.tracker.End()
	m.state = StateIdle
	return nil
}

// Wait blocks until any in-flight asynchronous begin has resolved.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// Finish ends the active stroke as if an Up had arrived. It is a no-op
// outside Active.
func (m *Machine) Finish(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishLocked(ctx)
}

// Abort discards the in-progress stroke without touching the
// destination layer. Safe in any state.
func (m *Machine) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle {
		return
	}
	m.sel.Current().Abort()
	m.resetLocked()
}

// resetLocked clears all per-stroke state back to Idle. The layer is
// untouched.
func (m *Machine) resetLocked() {
	m.queue.Reset()
	m.engine.Reset()
	m.pending = nil
	m.pendingEnd = false
	m.before = nil
	m.session = nil
	m.tracker.End()
	m.state = StateIdle
	m.beginGen++
}

// ProcessFrame drains the per-frame queue through the dab generator
// and returns the region dirtied since the last frame. The frame
// driver calls it once per tick.
func (m *Machine) ProcessFrame(ctx context.Context) paintcore.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateActive {
		for _, s := range m.queue.Drain() {
			if !m.stampSampleLocked(s) {
				break
			}
		}
	}
	dirty := m.frameDirty
	m.frameDirty = paintcore.Rect{}
	return dirty
}

// LiveScratch returns the accumulator's scratch buffer for display
// compositing while a stroke is in progress, or nil when the backend
// exposes none. The accumulator retains ownership.
func (m *Machine) LiveScratch() *paintcore.Pixmap {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive && m.state != StateStarting {
		return nil
	}
	if sp, ok := m.sel.Current().(interface{ Scratch() *paintcore.Pixmap }); ok {
		return sp.Scratch()
	}
	return nil
}
