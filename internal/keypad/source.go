package keypad

import "sync"

// MaxRun is the longest key run a remote producer may queue at once. The control loop consumes
// at most MaxRun keys per iteration, so a run queued into an empty queue is applied without local
// keys in between.
const MaxRun = 32

// Source yields pending key presses without blocking.
type Source interface {
	// Poll returns the next pending key, or false if none is waiting.
	Poll() (Key, bool)
}

// Queue is a channel-backed Source fed from other goroutines (remote API, console).
type Queue struct {
	mu sync.Mutex // serializes producers
	ch chan Key
}

// NewQueue returns a queue holding up to size pending keys.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Key, size)}
}

// Push enqueues k. It returns false when the queue is full and the key was dropped.
func (q *Queue) Push(k Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.ch <- k:
		return true
	default:
		return false
	}
}

// PushAll enqueues keys as one contiguous run, or nothing if they do not all fit. Runs from
// concurrent producers never interleave.
func (q *Queue) PushAll(keys ...Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	// only the consumer drains, so free space cannot shrink while the lock is held
	if cap(q.ch)-len(q.ch) < len(keys) {
		return false
	}
	for _, k := range keys {
		q.ch <- k
	}
	return true
}

func (q *Queue) Poll() (Key, bool) {
	select {
	case k := <-q.ch:
		return k, true
	default:
		return 0, false
	}
}

// Multi polls each source in order and returns the first pending key.
type Multi []Source

func (m Multi) Poll() (Key, bool) {
	for _, s := range m {
		if s == nil {
			continue
		}
		if k, ok := s.Poll(); ok {
			return k, true
		}
	}
	return 0, false
}
