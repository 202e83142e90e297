// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stm

import (
	"context"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Atomically runs fn as a transaction.
//
// If fn returns nil, its writes are committed atomically. If another commit
// invalidated what fn read, fn runs again. If fn returns [ErrRetry], its
// writes are discarded and Atomically blocks until a var read by fn changes,
// then runs fn again. Any other error discards the writes and is returned.
//
// Atomically may block forever if fn retries and nothing it read ever
// changes. Use [AtomicallyContext] to bound the wait.
func Atomically(fn func(*Tx) error) error {
	return AtomicallyContext(context.Background(), fn)
}

// AtomicallyContext is like [Atomically] but stops blocking when ctx is done,
// returning ctx.Err(). A transaction that does not need to wait is not
// affected by ctx.
func AtomicallyContext(ctx context.Context, fn func(*Tx) error) error {
	sw := spin.Wait{}
	for {
		tx := newTx()
		aborted, err := tx.run(fn)
		switch {
		case aborted:
			stats.conflicts.AddAcqRel(1)
			sw.Once()
		case err == nil:
			if tx.commit() {
				stats.commits.AddAcqRel(1)
				return nil
			}
			stats.conflicts.AddAcqRel(1)
			sw.Once()
		case IsRetry(err):
			stats.retries.AddAcqRel(1)
			if werr := tx.wait(ctx); werr != nil {
				return werr
			}
			sw.Reset()
		default:
			return err
		}
	}
}

// Do runs fn as a transaction and returns its result.
func Do[R any](fn func(*Tx) (R, error)) (R, error) {
	return DoContext(context.Background(), fn)
}

// DoContext is like [Do] but stops blocking when ctx is done.
func DoContext[R any](ctx context.Context, fn func(*Tx) (R, error)) (R, error) {
	var result R
	err := AtomicallyContext(ctx, func(tx *Tx) error {
		r, err := fn(tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return result, nil
}

// After returns a var that is false until d has elapsed and true afterwards.
func After(d time.Duration) *Var[bool] {
	v := NewVar(false)
	time.AfterFunc(d, func() {
		_ = Atomically(func(tx *Tx) error {
			v.Set(tx, true)
			return nil
		})
	})
	return v
}

var stats struct {
	commits   atomix.Uint64
	retries   atomix.Uint64
	conflicts atomix.Uint64
}

// Statistics are process-wide transaction counters.
type Statistics struct {
	Commits   uint64 // successful commits
	Retries   uint64 // attempts that blocked on ErrRetry
	Conflicts uint64 // attempts rerun because of a concurrent commit
}

// Stats returns a snapshot of the transaction counters.
func Stats() Statistics {
	return Statistics{
		Commits:   stats.commits.LoadAcquire(),
		Retries:   stats.retries.LoadAcquire(),
		Conflicts: stats.conflicts.LoadAcquire(),
	}
}
