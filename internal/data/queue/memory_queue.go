package queue

import (
	"context"
	"io"
	"sync"
	"time"
)

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

// MemoryQueue is a bounded in-process queue. Enqueue never blocks; items
// offered to a full or closed queue are dropped.
type MemoryQueue[T any] struct {
	ch     chan T
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue[T any](capacity int) *MemoryQueue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue[T]{ch: make(chan T, capacity)}
}

func (q *MemoryQueue[T]) Enqueue(item T) EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return EnqueueDropped
	}
	select {
	case q.ch <- item:
		return EnqueueAccepted
	default:
		return EnqueueDropped
	}
}

// DequeueBatch waits up to wait for a first item and then takes whatever else
// is already queued, up to maxItems. A nil batch with a nil error means the
// wait elapsed. io.EOF is returned once the queue is closed and drained; the
// batch returned alongside it may still hold items.
func (q *MemoryQueue[T]) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]T, error) {
	if maxItems <= 0 {
		maxItems = 1
	}

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	var first T
	select {
	case item, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		first = item
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case item, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			first = item
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	batch := make([]T, 1, maxItems)
	batch[0] = first
	for len(batch) < maxItems {
		select {
		case item, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, item)
		default:
			return batch, nil
		}
	}
	return batch, nil
}

func (q *MemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue[T]) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
