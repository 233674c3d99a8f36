package input

import (
	"errors"
	"testing"

	"github.com/gogpu/paintcore"
)

func nativeSample(strokeID uint64, phase paintcore.Phase) NativeSample {
	return NativeSample{
		StrokeID:  strokeID,
		PointerID: 1,
		Source:    paintcore.SourceWinTab,
		Phase:     phase,
		Pressure:  0.5,
	}
}

// TestRingReadFromConsumesOnce verifies that a cursor never observes
// the same sample twice.
func TestRingReadFromConsumesOnce(t *testing.T) {
	r := NewRing(8)
	cur := r.Cursor()

	r.Push(nativeSample(1, paintcore.PhaseDown))
	r.Push(nativeSample(1, paintcore.PhaseMove))

	batch, cur, err := r.ReadFrom(cur)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d samples, want 2", len(batch))
	}
	if batch[0].Seq >= batch[1].Seq {
		t.Errorf("sequence not increasing: %d then %d", batch[0].Seq, batch[1].Seq)
	}

	batch, cur, err = r.ReadFrom(cur)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("re-read returned %d samples, want 0", len(batch))
	}

	r.Push(nativeSample(1, paintcore.PhaseUp))
	batch, _, err = r.ReadFrom(cur)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(batch) != 1 || batch[0].Phase != paintcore.PhaseUp {
		t.Fatalf("got %v, want single Up sample", batch)
	}
}

// TestRingOverflowDropsOldest verifies bounded capacity with drop
// accounting.
func TestRingOverflowDropsOldest(t *testing.T) {
	r := NewRing(4)
	cur := r.Cursor()

	for i := 0; i < 10; i++ {
		r.Push(nativeSample(1, paintcore.PhaseMove))
	}

	batch, _, err := r.ReadFrom(cur)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("got %d samples, want 4 (capacity)", len(batch))
	}
	// Oldest surviving sample is #7 of 10.
	if batch[0].Seq != 7 {
		t.Errorf("oldest surviving seq = %d, want 7", batch[0].Seq)
	}

	m := r.Metrics()
	if m.Dropped != 6 {
		t.Errorf("dropped = %d, want 6", m.Dropped)
	}
	if m.Enqueued != 10 {
		t.Errorf("enqueued = %d, want 10", m.Enqueued)
	}
}

// TestRingEpochReset verifies that a stale cursor is rejected with a
// resync rather than returning ambiguous data.
func TestRingEpochReset(t *testing.T) {
	r := NewRing(8)
	cur := r.Cursor()

	r.Push(nativeSample(1, paintcore.PhaseDown))
	r.Reset()
	r.Push(nativeSample(2, paintcore.PhaseDown))

	batch, next, err := r.ReadFrom(cur)
	if !errors.Is(err, paintcore.ErrEpochReset) {
		t.Fatalf("err = %v, want ErrEpochReset", err)
	}
	if len(batch) != 0 {
		t.Fatalf("stale cursor returned %d samples, want 0", len(batch))
	}

	// The resynced cursor skips content pushed before the resync;
	// subsequent reads work normally.
	r.Push(nativeSample(2, paintcore.PhaseMove))
	batch, _, err = r.ReadFrom(next)
	if err != nil {
		t.Fatalf("ReadFrom after resync: %v", err)
	}
	if len(batch) != 1 || batch[0].Phase != paintcore.PhaseMove {
		t.Fatalf("after resync got %v, want single Move", batch)
	}
}
