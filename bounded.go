// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tbq

import (
	"fmt"
	"runtime"
	"unsafe"

	"code.hybscloud.com/tbq/stm"
)

const (
	ptrShift = 2 + unsafe.Sizeof(uintptr(0))/8       // log2 of the slot pointer size
	addrBits = 31 + 16*(unsafe.Sizeof(uintptr(0))/8) // bits of a single allocation
)

// MaxCapacity is the largest capacity accepted by [NewBounded]: the slot
// table must be a single allocation the runtime can address.
// 2^44 on 64-bit platforms, 2^29 on 32-bit ones.
const MaxCapacity = 1 << (addrBits - ptrShift)

// slot is one position of the ring. The full flag, not the cursors,
// tells an empty ring from a full one when readIndex == writeIndex.
type slot[T any] struct {
	full  bool
	value T
}

// Bounded is a fixed-capacity FIFO queue whose operations are transactions.
//
// Every method taking a [*stm.Tx] reads and writes the queue's vars inside
// that transaction, so any number of queue operations, on this queue or
// others, combine into one atomic unit. Operations that cannot proceed
// (Write on a full queue, Read or Peek on an empty one) return [stm.ErrRetry];
// returned from the transaction, it blocks the caller until the queue changes.
//
// Layout: a ring of capacity slots, a read cursor pointing at the oldest
// element and a write cursor pointing at the next free slot. The occupied
// slots are exactly the run from readIndex up to (not including) writeIndex,
// wrapping around.
//
// Memory: one [stm.Var] per slot plus two cursor vars.
type Bounded[T any] struct {
	slots    []*stm.Var[slot[T]]
	readIdx  *stm.Var[int]
	writeIdx *stm.Var[int]
	capacity int
}

// NewBounded creates an empty queue outside any transaction.
// Returns an error wrapping [ErrInvalidCapacity] if capacity < 1 or
// capacity > [MaxCapacity].
func NewBounded[T any](capacity int) (*Bounded[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	return newBounded[T](capacity)
}

// NewBoundedTx creates an empty queue as part of tx.
//
// The queue's vars are allocated directly, not through tx's write set. They
// are reachable only through whatever tx stores the queue in, so if tx is
// abandoned the queue is never observable by anyone.
func NewBoundedTx[T any](tx *stm.Tx, capacity int) (*Bounded[T], error) {
	if tx == nil {
		panic("tbq: NewBoundedTx requires a transaction")
	}
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	return newBounded[T](capacity)
}

func checkCapacity(capacity int) error {
	if capacity < 1 || capacity > MaxCapacity {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return nil
}

func newBounded[T any](capacity int) (q *Bounded[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); !ok {
				panic(r)
			}
			q, err = nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
		}
	}()
	q = &Bounded[T]{
		slots:    make([]*stm.Var[slot[T]], capacity),
		readIdx:  stm.NewVar(0),
		writeIdx: stm.NewVar(0),
		capacity: capacity,
	}
	for i := range q.slots {
		q.slots[i] = stm.NewVar(slot[T]{})
	}
	return q, nil
}

func (q *Bounded[T]) inc(i int) int {
	if i++; i == q.capacity {
		return 0
	}
	return i
}

func (q *Bounded[T]) dec(i int) int {
	if i == 0 {
		return q.capacity - 1
	}
	return i - 1
}

// Write appends v at the tail.
// Returns [stm.ErrRetry] if the queue is full.
func (q *Bounded[T]) Write(tx *stm.Tx, v T) error {
	w := q.writeIdx.Get(tx)
	s := q.slots[w]
	if s.Get(tx).full {
		return stm.ErrRetry
	}
	s.Set(tx, slot[T]{full: true, value: v})
	q.writeIdx.Set(tx, q.inc(w))
	return nil
}

// TryWrite appends v at the tail, or reports false if the queue is full.
// Never retries.
func (q *Bounded[T]) TryWrite(tx *stm.Tx, v T) bool {
	return attempt(tx, func(tx *stm.Tx) error {
		return q.Write(tx, v)
	})
}

// Read removes and returns the oldest element.
// Returns [stm.ErrRetry] if the queue is empty.
func (q *Bounded[T]) Read(tx *stm.Tx) (T, error) {
	r := q.readIdx.Get(tx)
	s := q.slots[r]
	cur := s.Get(tx)
	if !cur.full {
		var zero T
		return zero, stm.ErrRetry
	}
	s.Set(tx, slot[T]{})
	q.readIdx.Set(tx, q.inc(r))
	return cur.value, nil
}

// TryRead removes and returns the oldest element, or reports false if the
// queue is empty. Never retries.
func (q *Bounded[T]) TryRead(tx *stm.Tx) (T, bool) {
	return q.try(tx, q.Read)
}

// Peek returns the oldest element without removing it.
// Returns [stm.ErrRetry] if the queue is empty.
func (q *Bounded[T]) Peek(tx *stm.Tx) (T, error) {
	cur := q.slots[q.readIdx.Get(tx)].Get(tx)
	if !cur.full {
		var zero T
		return zero, stm.ErrRetry
	}
	return cur.value, nil
}

// TryPeek returns the oldest element without removing it, or reports false
// if the queue is empty. Never retries.
func (q *Bounded[T]) TryPeek(tx *stm.Tx) (T, bool) {
	return q.try(tx, q.Peek)
}

// try runs op with a "no value" fallback in place of retrying.
func (q *Bounded[T]) try(tx *stm.Tx, op func(*stm.Tx) (T, error)) (T, bool) {
	var v T
	ok := attempt(tx, func(tx *stm.Tx) (err error) {
		v, err = op(tx)
		return err
	})
	if !ok {
		var zero T
		return zero, false
	}
	return v, true
}

// attempt runs fn in tx, rolling back its writes and reporting false if it
// retries. Queue operations fail only by retrying, so any other error is a
// programming error and panics.
func attempt(tx *stm.Tx, fn func(*stm.Tx) error) bool {
	ok := false
	err := stm.OrElse(tx,
		func(tx *stm.Tx) error {
			if err := fn(tx); err != nil {
				return err
			}
			ok = true
			return nil
		},
		func(*stm.Tx) error { return nil })
	if err != nil {
		panic(fmt.Sprintf("tbq: queue operation failed: %v", err))
	}
	return ok
}

// UnGet pushes v back onto the head so that it is the next element read.
// It lands in the slot just behind the read cursor.
// Returns [stm.ErrRetry] if the queue is full.
func (q *Bounded[T]) UnGet(tx *stm.Tx, v T) error {
	r := q.dec(q.readIdx.Get(tx))
	s := q.slots[r]
	if s.Get(tx).full {
		return stm.ErrRetry
	}
	s.Set(tx, slot[T]{full: true, value: v})
	q.readIdx.Set(tx, r)
	return nil
}

// Flush removes every element and returns them oldest first.
// Returns an empty slice if the queue is empty. Never retries.
func (q *Bounded[T]) Flush(tx *stm.Tx) []T {
	w := q.writeIdx.Get(tx)
	var out []T
	// Walk backwards from the newest element to the first empty slot.
	for i, n := q.dec(w), 0; n < q.capacity; i, n = q.dec(i), n+1 {
		s := q.slots[i]
		cur := s.Get(tx)
		if !cur.full {
			break
		}
		s.Set(tx, slot[T]{})
		out = append(out, cur.value)
	}
	if len(out) == 0 {
		return []T{}
	}
	// Equal cursors over an empty slot mean empty.
	q.readIdx.Set(tx, w)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Len returns the number of queued elements, in [0, Cap()].
func (q *Bounded[T]) Len(tx *stm.Tx) int {
	r := q.readIdx.Get(tx)
	w := q.writeIdx.Get(tx)
	if r == w {
		if q.slots[r].Get(tx).full {
			return q.capacity
		}
		return 0
	}
	return (w - r + q.capacity) % q.capacity
}

// IsEmpty reports whether the queue holds no element.
func (q *Bounded[T]) IsEmpty(tx *stm.Tx) bool {
	r := q.readIdx.Get(tx)
	if r != q.writeIdx.Get(tx) {
		return false
	}
	return !q.slots[r].Get(tx).full
}

// IsFull reports whether the queue holds Cap() elements.
func (q *Bounded[T]) IsFull(tx *stm.Tx) bool {
	r := q.readIdx.Get(tx)
	if r != q.writeIdx.Get(tx) {
		return false
	}
	return q.slots[r].Get(tx).full
}

// Cap returns the queue capacity.
func (q *Bounded[T]) Cap() int {
	return q.capacity
}

// Equal reports whether q and other are the same queue.
// Queues are compared by identity, never by content.
func (q *Bounded[T]) Equal(other *Bounded[T]) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.readIdx == other.readIdx
}
