// Package sequencer provides a reorder buffer that lets results complete out
// of order while committing them strictly in sequence order.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrClosed    = errors.New("sequencer closed")
	ErrDuplicate = errors.New("sequence number already completed")
)

// CommitFunc applies a released result. It is never called concurrently with
// itself and always in ascending sequence order.
type CommitFunc[T any] func(seq uint64, v T) error

type entry[T any] struct {
	val  T
	skip bool
}

// Buffer holds completed results until every earlier sequence number has been
// committed. There is no dedicated commit goroutine: the caller whose result
// fills the gap at the watermark drains the buffer.
type Buffer[T any] struct {
	mu         sync.Mutex
	next       uint64
	held       map[uint64]entry[T]
	waiters    map[uint64][]chan struct{}
	committing bool
	err        error
	commit     CommitFunc[T]
}

// New returns a buffer whose watermark starts at first.
func New[T any](first uint64, commit CommitFunc[T]) *Buffer[T] {
	return &Buffer[T]{
		next:    first,
		held:    make(map[uint64]entry[T]),
		waiters: make(map[uint64][]chan struct{}),
		commit:  commit,
	}
}

// Complete records the result for seq and commits every result that is now
// releasable. It returns the buffer's terminal error, if any.
func (b *Buffer[T]) Complete(seq uint64, v T) error {
	return b.put(seq, entry[T]{val: v})
}

// Skip marks seq as finished without committing anything. Used for sequence
// numbers that belong to order-insensitive events.
func (b *Buffer[T]) Skip(seq uint64) error {
	return b.put(seq, entry[T]{skip: true})
}

func (b *Buffer[T]) put(seq uint64, e entry[T]) error {
	b.mu.Lock()
	if b.err != nil {
		err := b.err
		b.mu.Unlock()
		return err
	}
	if _, ok := b.held[seq]; ok || seq < b.next {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicate, seq)
	}
	b.held[seq] = e
	return b.drainLocked()
}

// drainLocked must be called with mu held and releases it.
func (b *Buffer[T]) drainLocked() error {
	if b.committing {
		b.mu.Unlock()
		return nil
	}
	b.committing = true
	for b.err == nil {
		e, ok := b.held[b.next]
		if !ok {
			break
		}
		seq := b.next
		delete(b.held, seq)
		if !e.skip {
			b.mu.Unlock()
			err := b.commit(seq, e.val)
			b.mu.Lock()
			if err != nil {
				b.failLocked(err)
				break
			}
		}
		b.next++
		b.wakeLocked(b.next)
	}
	b.committing = false
	err := b.err
	b.mu.Unlock()
	return err
}

func (b *Buffer[T]) wakeLocked(seq uint64) {
	for _, ch := range b.waiters[seq] {
		close(ch)
	}
	delete(b.waiters, seq)
}

func (b *Buffer[T]) failLocked(err error) {
	if b.err != nil {
		return
	}
	b.err = err
	for seq := range b.waiters {
		b.wakeLocked(seq)
	}
}

// WaitFor blocks until every result before seq has been committed, the buffer
// fails, or ctx is done.
func (b *Buffer[T]) WaitFor(ctx context.Context, seq uint64) error {
	for {
		b.mu.Lock()
		if b.err != nil {
			err := b.err
			b.mu.Unlock()
			return err
		}
		if b.next >= seq {
			b.mu.Unlock()
			return nil
		}
		ch := make(chan struct{})
		b.waiters[seq] = append(b.waiters[seq], ch)
		b.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close fails the buffer. Later calls report err; the first error wins.
func (b *Buffer[T]) Close(err error) {
	if err == nil {
		err = ErrClosed
	}
	b.mu.Lock()
	b.failLocked(err)
	b.mu.Unlock()
}

// Err returns the terminal error, or nil while the buffer is healthy.
func (b *Buffer[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Watermark returns the next sequence number eligible for commit.
func (b *Buffer[T]) Watermark() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.next
}

// Pending returns the number of results held back waiting for earlier ones.
func (b *Buffer[T]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.held)
}
