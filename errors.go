// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tbq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue and Write: the queue is full (backpressure)
// For Dequeue, Read and Peek: the queue is empty (no data available)
// For UnGet: there is no room in front of the head
//
// ErrWouldBlock is a control flow signal, not a failure. Inside a
// transaction it is [code.hybscloud.com/tbq/stm.ErrRetry]: returning it from
// the transaction blocks until the queue changes, and composing it with
// stm.OrElse selects a fallback instead of blocking.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidCapacity is returned by constructors when capacity is not
// positive or exceeds [MaxCapacity].
var ErrInvalidCapacity = errors.New("tbq: invalid capacity")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
