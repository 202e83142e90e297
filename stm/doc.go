// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stm provides a small software transactional memory.
//
// A transaction is a function over [Var] cells that either commits all of its
// writes at once or has no effect. Transactions compose: several reads and
// writes over unrelated vars become one atomic unit simply by performing them
// inside the same function.
//
// # Basic Usage
//
//	balance := stm.NewVar(100)
//
//	err := stm.Atomically(func(tx *stm.Tx) error {
//	    b := balance.Get(tx)
//	    if err := stm.Check(b >= 30); err != nil {
//	        return err // block until balance changes
//	    }
//	    balance.Set(tx, b-30)
//	    return nil
//	})
//
// # Retry
//
// Returning [ErrRetry] from a transaction discards its writes and blocks the
// caller until some var read by the attempt is changed by another commit. The
// whole function then runs again from scratch. No goroutine spins while
// blocked.
//
// [ErrRetry] is [code.hybscloud.com/iox.ErrWouldBlock]: "would block" and
// "retry" are the same control flow signal, so a non-blocking operation that
// reports ErrWouldBlock can be used directly as a transactional wait.
//
// # Alternatives
//
// [OrElse] runs a first alternative and, if it retries, rolls back its writes
// and runs a second alternative inside the same transaction:
//
//	err := stm.Atomically(func(tx *stm.Tx) error {
//	    return stm.OrElse(tx, takeFromA, takeFromB)
//	})
//
// When every alternative retries, the transaction waits on the union of all
// vars they read. [Select] generalises OrElse to any number of alternatives.
//
// # Timeouts
//
// There is no timeout primitive. [After] returns a var that becomes true after
// a delay; checking it in the last alternative turns a blocking transaction
// into one that gives up:
//
//	deadline := stm.After(time.Second)
//	err := stm.Atomically(func(tx *stm.Tx) error {
//	    return stm.OrElse(tx, take, func(tx *stm.Tx) error {
//	        if err := stm.Check(deadline.Get(tx)); err != nil {
//	            return err
//	        }
//	        timedOut = true
//	        return nil
//	    })
//	})
//
// [AtomicallyContext] is the context-aware variant: a cancelled context ends a
// blocked wait with ctx.Err().
//
// # Consistency
//
// Every [Var.Get] validates against a global version clock. An attempt that
// would observe a value committed after it started is abandoned and rerun, so
// transaction code never sees a torn state. The abandonment unwinds with a
// panic recovered by [Atomically]; transaction functions must not swallow
// panics they did not raise.
//
// Transactions must not call Atomically recursively, and must not perform
// irreversible side effects since they may run more than once.
package stm
