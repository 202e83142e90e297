// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stm

import (
	"sync"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// commitMu guards every cell's value and watcher set.
// Readers take it shared for a single cell; commits take it exclusively.
var commitMu sync.RWMutex

// clock is the global version clock. Each commit stamps the cells it writes
// with the incremented clock value.
var clock struct {
	_ cpu.CacheLinePad
	v atomix.Uint64
	_ cpu.CacheLinePad
}

// cell is the type-erased state behind a Var.
type cell struct {
	value    any
	version  atomix.Uint64              // clock value of the last commit
	watchers map[chan struct{}]struct{} // transactions blocked on this cell
}

// Var is a transactional cell holding a value of type T.
//
// Vars are read and written with [Var.Get] and [Var.Set] inside a transaction.
// Identity matters: two Vars are the same cell only if they are the same
// pointer.
type Var[T any] struct {
	c cell
}

// NewVar creates a Var holding initial.
// It may be called anywhere, including inside a transaction; a var created by
// an attempt that is later abandoned is simply unreachable.
func NewVar[T any](initial T) *Var[T] {
	v := &Var[T]{}
	v.c.value = initial
	return v
}

// Get returns the value of v as seen by tx, including tx's own pending writes.
func (v *Var[T]) Get(tx *Tx) T {
	val, _ := tx.get(&v.c).(T)
	return val
}

// Set records val as the new value of v. It becomes visible to other
// transactions only when tx commits.
func (v *Var[T]) Set(tx *Tx, val T) {
	tx.set(&v.c, val)
}

// Load returns the last committed value of v without a transaction.
func (v *Var[T]) Load() T {
	commitMu.RLock()
	val, _ := v.c.value.(T)
	commitMu.RUnlock()
	return val
}
