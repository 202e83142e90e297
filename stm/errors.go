// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stm

import "code.hybscloud.com/iox"

// ErrRetry asks [Atomically] to abandon the current attempt and block until a
// var it read is modified, then run the transaction again.
//
// ErrRetry is a control flow signal, not a failure. It never escapes
// Atomically except through [OrElse] and [Select], which consume it.
//
// This is an alias for [iox.ErrWouldBlock].
var ErrRetry = iox.ErrWouldBlock

// Retry returns [ErrRetry].
func Retry() error {
	return ErrRetry
}

// Check returns nil if cond holds and [ErrRetry] otherwise.
func Check(cond bool) error {
	if cond {
		return nil
	}
	return ErrRetry
}

// IsRetry reports whether err asks for a retry.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsRetry(err error) bool {
	return iox.IsWouldBlock(err)
}
