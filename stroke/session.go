package stroke

import (
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/paintcore"
)

// DefaultSuppressionWindow is the window inside which a second Down
// from the same pointer and source is treated as a duplicate of the
// first. Some pointer stacks deliver the windowed Down alongside the
// native one a few milliseconds apart.
const DefaultSuppressionWindow = 40 * time.Millisecond

// Session identifies one pointer contact from Down to finalize.
type Session struct {
	ID        uuid.UUID
	StrokeID  uint64
	PointerID uint32
	Source    paintcore.Source
	StartedAt time.Time
}

// Tracker allocates stroke sessions and suppresses duplicate Downs.
// A Down from a different source than the live session is not a
// duplicate: the user switched backends, and the new contact wins.
type Tracker struct {
	suppression time.Duration
	diag        paintcore.Diagnostics
	now         func() time.Time

	live     *Session
	lastDown time.Time
	lastSrc  paintcore.Source
	lastPtr  uint32
}

// NewTracker creates a tracker with the given suppression window.
// Non-positive windows disable suppression.
func NewTracker(suppression time.Duration, d paintcore.Diagnostics) *Tracker {
	if d == nil {
		d = paintcore.NopDiagnostics{}
	}
	return &Tracker{
		suppression: suppression,
		diag:        d,
		now:         time.Now,
	}
}

// Duplicate reports whether a Down falls inside the suppression
// window of the previous one, counting the anomaly when it does.
func (t *Tracker) Duplicate(s paintcore.InputSample) bool {
	if t.suppression > 0 && !t.lastDown.IsZero() &&
		s.Source == t.lastSrc && s.PointerID == t.lastPtr &&
		t.now().Sub(t.lastDown) < t.suppression {
		t.diag.Count(paintcore.AnomalyDuplicateDown)
		return true
	}
	return false
}

// Begin allocates a session for a Down sample. It returns nil when the
// Down is a suppressed duplicate of a recent one.
func (t *Tracker) Begin(s paintcore.InputSample) *Session {
	if t.Duplicate(s) {
		return nil
	}

	now := t.now()
	t.lastDown = now
	t.lastSrc = s.Source
	t.lastPtr = s.PointerID

	t.live = &Session{
		ID:        uuid.New(),
		StrokeID:  s.StrokeID,
		PointerID: s.PointerID,
		Source:    s.Source,
		StartedAt: now,
	}
	return t.live
}

// Live returns the current session, or nil.
func (t *Tracker) Live() *Session { return t.live }

// End closes the current session.
func (t *Tracker) End() { t.live = nil }

// Reset drops all state, including the suppression history.
func (t *Tracker) Reset() {
	t.live = nil
	t.lastDown = time.Time{}
}
