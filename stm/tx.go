// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stm

import (
	"context"
	"maps"
)

// Tx is a single attempt of a transaction.
//
// A Tx is only valid inside the function passed to [Atomically] and must not
// be retained or shared between goroutines.
type Tx struct {
	rv     uint64           // clock value when the attempt started
	reads  map[*cell]uint64 // cell -> version observed
	writes map[*cell]any    // cell -> pending value
}

// conflict unwinds an attempt that observed a cell committed after it started.
type conflict struct{}

func newTx() *Tx {
	return &Tx{
		rv:     clock.v.LoadAcquire(),
		reads:  make(map[*cell]uint64),
		writes: make(map[*cell]any),
	}
}

func (tx *Tx) get(c *cell) any {
	if tx == nil {
		panic("stm: Get called outside a transaction")
	}
	if val, ok := tx.writes[c]; ok {
		return val
	}

	commitMu.RLock()
	val := c.value
	ver := c.version.LoadAcquire()
	commitMu.RUnlock()

	if ver > tx.rv {
		panic(conflict{})
	}
	tx.reads[c] = ver
	return val
}

func (tx *Tx) set(c *cell, val any) {
	if tx == nil {
		panic("stm: Set called outside a transaction")
	}
	tx.writes[c] = val
}

// run executes fn, reporting aborted if the attempt hit a conflict.
func (tx *Tx) run(fn func(*Tx) error) (aborted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(conflict); !ok {
				panic(r)
			}
			aborted = true
		}
	}()
	return false, fn(tx)
}

// commit validates the read set and publishes the write set.
// Returns false if another commit invalidated a read.
func (tx *Tx) commit() bool {
	// Every read was checked against rv when it happened.
	if len(tx.writes) == 0 {
		return true
	}

	commitMu.Lock()
	for c, ver := range tx.reads {
		if c.version.LoadAcquire() != ver {
			commitMu.Unlock()
			return false
		}
	}

	wv := clock.v.AddAcqRel(1)
	var wake []chan struct{}
	for c, val := range tx.writes {
		c.value = val
		c.version.StoreRelease(wv)
		for ch := range c.watchers {
			wake = append(wake, ch)
		}
		clear(c.watchers)
	}
	commitMu.Unlock()

	for _, ch := range wake {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return true
}

// wait blocks until a cell in the read set has been committed since it was
// read, or ctx is done.
func (tx *Tx) wait(ctx context.Context) error {
	ch := make(chan struct{}, 1)

	commitMu.Lock()
	for c, ver := range tx.reads {
		if c.version.LoadAcquire() != ver {
			commitMu.Unlock()
			return nil
		}
	}
	for c := range tx.reads {
		if c.watchers == nil {
			c.watchers = make(map[chan struct{}]struct{})
		}
		c.watchers[ch] = struct{}{}
	}
	commitMu.Unlock()

	var err error
	select {
	case <-ch:
	case <-ctx.Done():
		err = ctx.Err()
	}

	commitMu.Lock()
	for c := range tx.reads {
		delete(c.watchers, ch)
	}
	commitMu.Unlock()
	return err
}

// OrElse runs first; if it returns [ErrRetry], the writes it made are rolled
// back and second runs instead, within the same transaction.
//
// Reads made by first stay in the read set, so if second also retries the
// transaction wakes on a change to anything either alternative looked at.
// Errors other than ErrRetry from first are returned without running second.
func OrElse(tx *Tx, first, second func(*Tx) error) error {
	saved := maps.Clone(tx.writes)
	err := first(tx)
	if !IsRetry(err) {
		return err
	}
	tx.writes = saved
	return second(tx)
}

// Select runs alts in order until one does not retry. It returns [ErrRetry]
// if all of them retry or alts is empty.
func Select(tx *Tx, alts ...func(*Tx) error) error {
	if len(alts) == 0 {
		return ErrRetry
	}
	return OrElse(tx, alts[0], func(tx *Tx) error {
		return Select(tx, alts[1:]...)
	})
}
