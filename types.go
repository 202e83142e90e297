// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tbq

import "code.hybscloud.com/tbq/stm"

// Queue is the combined producer-consumer interface for a FIFO queue.
//
// Queue provides non-blocking Enqueue and Dequeue operations, each running
// as its own transaction. Both return ErrWouldBlock when they cannot proceed
// (queue full or empty).
//
// Example:
//
//	q, _ := tbq.NewBounded[int](1024)
//
//	val := 42
//	if err := q.Enqueue(&val); err != nil {
//	    // Handle full queue
//	}
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs. The queue
// stores a copy of the pointed-to value, so the original can be modified
// after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The slot it occupied is cleared to allow
// garbage collection of referenced objects.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// TxQueue is the transactional interface of a bounded FIFO queue.
//
// Each method runs inside the caller's transaction. Methods returning an
// error return only [stm.ErrRetry], meaning "this transaction must wait".
type TxQueue[T any] interface {
	// Write appends v, or retries if the queue is full.
	Write(tx *stm.Tx, v T) error
	// Read removes the oldest element, or retries if the queue is empty.
	Read(tx *stm.Tx) (T, error)
	// Peek returns the oldest element without removing it, or retries.
	Peek(tx *stm.Tx) (T, error)
	// UnGet pushes v back onto the head, or retries if the queue is full.
	UnGet(tx *stm.Tx, v T) error
	// TryRead is Read with a "no value" fallback instead of retrying.
	TryRead(tx *stm.Tx) (T, bool)
	// TryPeek is Peek with a "no value" fallback instead of retrying.
	TryPeek(tx *stm.Tx) (T, bool)
	// Flush removes and returns every element, oldest first.
	Flush(tx *stm.Tx) []T
	// Len returns the number of queued elements.
	Len(tx *stm.Tx) int
	// IsEmpty reports whether the queue holds no element.
	IsEmpty(tx *stm.Tx) bool
	// IsFull reports whether the queue holds Cap() elements.
	IsFull(tx *stm.Tx) bool
	Cap() int
}

// Drainer atomically empties a queue outside any transaction.
type Drainer[T any] interface {
	// Drain removes every element and returns them oldest first.
	Drain() []T
}

var (
	_ Queue[int]   = (*Bounded[int])(nil)
	_ TxQueue[int] = (*Bounded[int])(nil)
	_ Drainer[int] = (*Bounded[int])(nil)
)
