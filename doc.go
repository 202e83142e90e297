// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tbq provides a bounded FIFO queue whose operations are composable
// transactions.
//
// A [Bounded] queue is a fixed-capacity ring of transactional slots with a
// read cursor and a write cursor, all held in [code.hybscloud.com/tbq/stm]
// vars. Blocking operations do not spin and do not hold a lock: they return
// [stm.ErrRetry], which makes the enclosing transaction wait until the queue
// changes. Any number of operations, on one queue or several, can therefore
// be combined into one all-or-nothing unit.
//
// # Quick Start
//
// Standalone operations (each is its own transaction):
//
//	q, err := tbq.NewBounded[Event](1024)
//
//	err = q.Put(ctx, ev)        // blocks while full
//	ev, err = q.Take(ctx)       // blocks while empty
//	err = q.Enqueue(&ev)        // ErrWouldBlock if full
//	ev, err = q.Dequeue()       // ErrWouldBlock if empty
//	all := q.Drain()            // atomic flush, oldest first
//
// # Composing Operations
//
// Every operation also exists in transactional form, taking a [*stm.Tx]:
//
//	// Move one element from src to dst atomically.
//	// Blocks while src is empty or dst is full.
//	err := stm.Atomically(func(tx *stm.Tx) error {
//	    v, err := src.Read(tx)
//	    if err != nil {
//	        return err
//	    }
//	    return dst.Write(tx, v)
//	})
//
//	// Take from whichever queue has an element, preferring high.
//	v, err := stm.Do(func(tx *stm.Tx) (Job, error) {
//	    var job Job
//	    err := stm.OrElse(tx,
//	        func(tx *stm.Tx) (err error) { job, err = high.Read(tx); return },
//	        func(tx *stm.Tx) (err error) { job, err = low.Read(tx); return },
//	    )
//	    return job, err
//	})
//
// # Operations
//
//	Write(tx, v)    append at the tail; retries while full
//	Read(tx)        remove the head; retries while empty
//	Peek(tx)        return the head without removing it; retries while empty
//	UnGet(tx, v)    push v in front of the head; retries while full
//	TryRead(tx)     Read, or (zero, false) instead of retrying
//	TryPeek(tx)     Peek, or (zero, false) instead of retrying
//	TryWrite(tx, v) Write, or false instead of retrying
//	Flush(tx)       remove and return everything, oldest first; never retries
//	Len(tx)         number of elements, in [0, Cap()]
//	IsEmpty(tx)     true when no element is queued
//	IsFull(tx)      true when Cap() elements are queued
//
// UnGet is the only operation that reorders relative to plain FIFO: the
// pushed-back element is the next one read.
//
// # Empty and Full
//
// When the cursors coincide the queue is either empty or full. The cursors
// alone cannot tell which; the occupancy of the slot under them decides.
//
// # Capacity
//
// Capacity is exact (no rounding) and fixed at construction. It must be in
// [1, MaxCapacity]; other values yield an error wrapping
// [ErrInvalidCapacity].
//
//	q, err := tbq.NewBounded[int](3)    // Cap() == 3
//	q, err := tbq.NewBounded[int](0)    // errors.Is(err, tbq.ErrInvalidCapacity)
//
// [NewBoundedTx] creates a queue as part of an enclosing transaction.
//
// # Error Handling
//
// Full and empty are never failures. Inside a transaction they are
// [stm.ErrRetry]; outside one, the non-blocking Enqueue and Dequeue return
// [ErrWouldBlock]. Both are [code.hybscloud.com/iox.ErrWouldBlock].
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        break
//	    }
//	    if !tbq.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// Polling is rarely needed: Put and Take block without busy-waiting and
// honour context cancellation.
//
// # Identity
//
// Two queues are [Bounded.Equal] only if they are the same queue. Contents
// are never compared.
//
// # Thread Safety
//
// All operations are safe for any number of concurrent goroutines. There is
// no lock owned by the queue; all synchronization is delegated to the stm
// commit and retry machinery.
package tbq
