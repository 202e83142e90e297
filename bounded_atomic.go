// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tbq

import (
	"context"

	"code.hybscloud.com/tbq/stm"
)

// The methods in this file each run as one standalone transaction.

// Enqueue adds an element to the queue (non-blocking).
// Returns ErrWouldBlock if the queue is full.
func (q *Bounded[T]) Enqueue(elem *T) error {
	if elem == nil {
		panic("tbq: Enqueue of nil element pointer")
	}
	ok, _ := stm.Do(func(tx *stm.Tx) (bool, error) {
		return q.TryWrite(tx, *elem), nil
	})
	if !ok {
		return ErrWouldBlock
	}
	return nil
}

// Dequeue removes and returns the oldest element (non-blocking).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Bounded[T]) Dequeue() (T, error) {
	var v T
	ok := false
	_ = stm.Atomically(func(tx *stm.Tx) error {
		v, ok = q.TryRead(tx)
		return nil
	})
	if !ok {
		var zero T
		return zero, ErrWouldBlock
	}
	return v, nil
}

// Put appends v, blocking while the queue is full.
// Returns ctx.Err() if ctx is done first.
func (q *Bounded[T]) Put(ctx context.Context, v T) error {
	return stm.AtomicallyContext(ctx, func(tx *stm.Tx) error {
		return q.Write(tx, v)
	})
}

// Take removes and returns the oldest element, blocking while the queue is
// empty. Returns ctx.Err() if ctx is done first.
func (q *Bounded[T]) Take(ctx context.Context) (T, error) {
	return stm.DoContext(ctx, q.Read)
}

// PeekWait returns the oldest element without removing it, blocking while
// the queue is empty.
func (q *Bounded[T]) PeekWait(ctx context.Context) (T, error) {
	return stm.DoContext(ctx, q.Peek)
}

// PutFront pushes v back onto the head, blocking while the queue is full.
func (q *Bounded[T]) PutFront(ctx context.Context, v T) error {
	return stm.AtomicallyContext(ctx, func(tx *stm.Tx) error {
		return q.UnGet(tx, v)
	})
}

// Drain atomically removes every element and returns them oldest first.
func (q *Bounded[T]) Drain() []T {
	out, _ := stm.Do(func(tx *stm.Tx) ([]T, error) {
		return q.Flush(tx), nil
	})
	return out
}

// Size returns the number of queued elements.
func (q *Bounded[T]) Size() int {
	n, _ := stm.Do(func(tx *stm.Tx) (int, error) {
		return q.Len(tx), nil
	})
	return n
}
