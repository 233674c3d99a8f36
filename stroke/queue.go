package stroke

import (
	"sync"

	"github.com/gogpu/paintcore"
)

// DefaultQueueCapacity bounds the per-frame sample queue. At 240 Hz
// tablet rates and a 60 Hz frame cadence a frame drains four samples,
// so the default leaves two orders of magnitude of headroom for
// stalled frames.
const DefaultQueueCapacity = 512

// QueueMetrics is a snapshot of queue counters.
type QueueMetrics struct {
	Enqueued uint64
	Dequeued uint64
	Dropped  uint64
	MaxDepth int
}

// FrameQueue buffers normalized samples between the input side and the
// frame driver. It is written by the single event-dispatch goroutine
// and drained by the frame driver; when the producer outruns the
// capacity the oldest samples are dropped and counted, never the
// newest, so the stroke tail stays current.
type FrameQueue struct {
	mu   sync.Mutex
	buf  []paintcore.InputSample
	head int
	n    int

	enqueued uint64
	dequeued uint64
	dropped  uint64
	maxDepth int
}

// NewFrameQueue creates a queue with the given capacity. Non-positive
// capacities fall back to DefaultQueueCapacity.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &FrameQueue{buf: make([]paintcore.InputSample, capacity)}
}

// Push appends a sample, evicting the oldest one when full.
func (q *FrameQueue) Push(s paintcore.InputSample) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		q.dropped++
	}
	q.buf[(q.head+q.n)%len(q.buf)] = s
	q.n++
	q.enqueued++
	if q.n > q.maxDepth {
		q.maxDepth = q.n
	}
}

// Drain removes and returns all queued samples in arrival order.
func (q *FrameQueue) Drain() []paintcore.InputSample {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == 0 {
		return nil
	}
	out := make([]paintcore.InputSample, q.n)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.dequeued += uint64(q.n)
	q.head = 0
	q.n = 0
	return out
}

// Len returns the current depth.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Reset discards all queued samples without counting them as dequeued.
func (q *FrameQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.head = 0
	q.n = 0
}

// Metrics returns a snapshot of the queue counters.
func (q *FrameQueue) Metrics() QueueMetrics {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueMetrics{
		Enqueued: q.enqueued,
		Dequeued: q.dequeued,
		Dropped:  q.dropped,
		MaxDepth: q.maxDepth,
	}
}
