package stroke

import (
	"testing"

	"github.com/gogpu/paintcore"
)

func qsample(x float64) paintcore.InputSample {
	return paintcore.InputSample{X: x, Phase: paintcore.PhaseMove}
}

func TestFrameQueueOrder(t *testing.T) {
	q := NewFrameQueue(8)
	for i := 0; i < 5; i++ {
		q.Push(qsample(float64(i)))
	}
	out := q.Drain()
	if len(out) != 5 {
		t.Fatalf("drained %d samples, want 5", len(out))
	}
	for i, s := range out {
		if s.X != float64(i) {
			t.Errorf("sample %d: X = %v, want %d", i, s.X, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", q.Len())
	}
}

func TestFrameQueueDropsOldest(t *testing.T) {
	q := NewFrameQueue(3)
	for i := 0; i < 5; i++ {
		q.Push(qsample(float64(i)))
	}
	out := q.Drain()
	if len(out) != 3 {
		t.Fatalf("drained %d samples, want 3", len(out))
	}
	// The two oldest were evicted; the stroke tail survives.
	for i, want := range []float64{2, 3, 4} {
		if out[i].X != want {
			t.Errorf("sample %d: X = %v, want %v", i, out[i].X, want)
		}
	}
	m := q.Metrics()
	if m.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", m.Dropped)
	}
	if m.Enqueued != 5 || m.Dequeued != 3 {
		t.Errorf("Enqueued/Dequeued = %d/%d, want 5/3", m.Enqueued, m.Dequeued)
	}
}

func TestFrameQueueMaxDepth(t *testing.T) {
	q := NewFrameQueue(16)
	for i := 0; i < 7; i++ {
		q.Push(qsample(0))
	}
	q.Drain()
	q.Push(qsample(0))
	if got := q.Metrics().MaxDepth; got != 7 {
		t.Errorf("MaxDepth = %d, want 7", got)
	}
}

func TestFrameQueueReset(t *testing.T) {
	q := NewFrameQueue(8)
	q.Push(qsample(1))
	q.Push(qsample(2))
	q.Reset()
	if q.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", q.Len())
	}
	if out := q.Drain(); out != nil {
		t.Errorf("Drain after reset returned %d samples", len(out))
	}
	// Reset does not count discarded samples as dequeued.
	if m := q.Metrics(); m.Dequeued != 0 {
		t.Errorf("Dequeued = %d, want 0", m.Dequeued)
	}
}

func TestFrameQueueDefaultCapacity(t *testing.T) {
	q := NewFrameQueue(0)
	if len(q.buf) != DefaultQueueCapacity {
		t.Errorf("capacity = %d, want %d", len(q.buf), DefaultQueueCapacity)
	}
}
