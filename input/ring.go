package input

import (
	"sync"

	"github.com/gogpu/paintcore"
)

// NativeSample is one raw record from a native streaming backend,
// before normalization. Coordinates are in canvas pixels; tilt is in
// device degrees.
type NativeSample struct {
	// Seq is assigned by the ring on push; strictly increasing within
	// one epoch.
	Seq uint64

	// StrokeID groups samples of one pointer contact.
	StrokeID uint64

	// PointerID identifies the physical pointer.
	PointerID uint32

	// Source is the native backend that produced the sample.
	Source paintcore.Source

	// Phase is the contact phase.
	Phase paintcore.Phase

	X, Y        float64
	Pressure    float32
	TiltXDeg    float32
	TiltYDeg    float32
	RotationDeg float32

	HostTimeUs   uint64
	DeviceTimeUs uint64
}

// Cursor is a monotonic read position into a Ring. A cursor from an
// older epoch is invalid and forces a reset-and-resync.
type Cursor struct {
	Epoch uint64
	Seq   uint64
}

// RingMetrics is a snapshot of ring telemetry for diagnostics.
type RingMetrics struct {
	Enqueued uint64
	Dequeued uint64
	Dropped  uint64
	MaxDepth int
	Depth    int
}

// Ring is a bounded ring buffer of native samples with monotonic
// sequence numbers and an epoch counter. It is single-writer (the
// native input callback) with any number of cursor readers; in
// practice the Normalizer is the only reader.
type Ring struct {
	mu       sync.Mutex
	buf      []NativeSample
	head     int // index of oldest sample
	count    int
	epoch    uint64
	nextSeq  uint64
	enqueued uint64
	dequeued uint64
	dropped  uint64
	maxDepth int
}

// NewRing creates a ring with the given capacity. Capacities below 1
// are clamped to 1.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		buf:     make([]NativeSample, capacity),
		epoch:   1,
		nextSeq: 1,
	}
}

// Push appends a sample, assigning its sequence number. When the ring
// is full the oldest sample is dropped and counted; readers that were
// behind observe the gap as a resync, not as duplicated data.
func (r *Ring) Push(s NativeSample) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.Seq = r.nextSeq
	r.nextSeq++

	if r.count == len(r.buf) {
		r.head = (r.head + 1) % len(r.buf)
		r.count--
		r.dropped++
	}
	r.buf[(r.head+r.count)%len(r.buf)] = s
	r.count++
	r.enqueued++
	if r.count > r.maxDepth {
		r.maxDepth = r.count
	}
	return s.Seq
}

// ReadFrom returns all samples with Seq >= cur.Seq in order, plus the
// advanced cursor. A cursor from a stale epoch returns ErrEpochReset
// together with a resynced cursor positioned past all current content;
// the caller treats this as a hard reset, never as partial data.
func (r *Ring) ReadFrom(cur Cursor) ([]NativeSample, Cursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur.Epoch != r.epoch {
		return nil, Cursor{Epoch: r.epoch, Seq: r.nextSeq}, paintcore.ErrEpochReset
	}

	var out []NativeSample
	for i := 0; i < r.count; i++ {
		s := r.buf[(r.head+i)%len(r.buf)]
		if s.Seq >= cur.Seq {
			out = append(out, s)
		}
	}
	r.dequeued += uint64(len(out))
	return out, Cursor{Epoch: r.epoch, Seq: r.nextSeq}, nil
}

// Cursor returns a fresh cursor positioned past all current content.
func (r *Ring) Cursor() Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Cursor{Epoch: r.epoch, Seq: r.nextSeq}
}

// Reset clears the ring and bumps the epoch, invalidating all
// outstanding cursors. Called when the native backend restarts or the
// buffer is externally cleared.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
	r.epoch++
	r.nextSeq = 1
}

// Metrics returns a telemetry snapshot.
func (r *Ring) Metrics() RingMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RingMetrics{
		Enqueued: r.enqueued,
		Dequeued: r.dequeued,
		Dropped:  r.dropped,
		MaxDepth: r.maxDepth,
		Depth:    r.count,
	}
}
