// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/tbq"
	"code.hybscloud.com/tbq/stm"
)

// Mode selects the workload shape.
type Mode string

const (
	// ModeDirect: producers Put into one queue, consumers Take from it.
	ModeDirect Mode = "direct"
	// ModeTransfer: producers fill a source queue, movers atomically Read
	// from it and Write into a sink, consumers Take from the sink.
	ModeTransfer Mode = "transfer"
)

// Config describes one timed run.
type Config struct {
	Mode      Mode
	Capacity  int
	Producers int
	Consumers int
	Movers    int
	Duration  time.Duration
}

// Result holds the outcome of one run.
type Result struct {
	Mode       Mode          `json:"mode"`
	Capacity   int           `json:"capacity"`
	Producers  int           `json:"producers"`
	Consumers  int           `json:"consumers"`
	Movers     int           `json:"movers,omitempty"`
	Produced   int64         `json:"produced"`
	Consumed   int64         `json:"consumed"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Throughput float64       `json:"throughput_msgs_sec"`
	Commits    uint64        `json:"commits"`
	Retries    uint64        `json:"retries"`
	Conflicts  uint64        `json:"conflicts"`
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeDirect, ModeTransfer:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Producers < 1 || c.Consumers < 1 {
		return fmt.Errorf("need at least one producer and one consumer")
	}
	if c.Mode == ModeTransfer && c.Movers < 1 {
		return fmt.Errorf("transfer mode needs at least one mover")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

// Run spawns producers and consumers that run for cfg.Duration. When the
// duration expires producers stop, movers and consumers drain whatever is
// left, and every produced value is checked to have been consumed exactly
// once.
func Run(cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	src, err := tbq.NewBounded[int64](cfg.Capacity)
	if err != nil {
		return Result{}, err
	}
	sink := src
	if cfg.Mode == ModeTransfer {
		if sink, err = tbq.NewBounded[int64](cfg.Capacity); err != nil {
			return Result{}, err
		}
	}

	before := stm.Stats()
	start := time.Now()

	prodCtx, stopProducers := context.WithTimeout(context.Background(), cfg.Duration)
	defer stopProducers()

	var next, produced, consumed atomix.Int64
	var prodWg sync.WaitGroup
	for range cfg.Producers {
		prodWg.Add(1)
		go func() {
			defer prodWg.Done()
			for {
				v := next.AddAcqRel(1) - 1
				if err := src.Put(prodCtx, v); err != nil {
					return
				}
				produced.Add(1)
			}
		}()
	}

	// Movers and consumers run until told to stop after draining.
	workCtx, stopWork := context.WithCancel(context.Background())
	defer stopWork()

	var moved atomix.Int64
	var moveWg sync.WaitGroup
	if cfg.Mode == ModeTransfer {
		for range cfg.Movers {
			moveWg.Add(1)
			go func() {
				defer moveWg.Done()
				for {
					err := stm.AtomicallyContext(workCtx, func(tx *stm.Tx) error {
						v, err := src.Read(tx)
						if err != nil {
							return err
						}
						return sink.Write(tx, v)
					})
					if err != nil {
						return
					}
					moved.Add(1)
				}
			}()
		}
	}

	var mu sync.Mutex
	seen := make(map[int64]struct{})
	var dup error
	var consWg sync.WaitGroup
	for range cfg.Consumers {
		consWg.Add(1)
		go func() {
			defer consWg.Done()
			for {
				v, err := sink.Take(workCtx)
				if err != nil {
					return
				}
				consumed.Add(1)
				mu.Lock()
				if _, ok := seen[v]; ok && dup == nil {
					dup = fmt.Errorf("value %d consumed twice", v)
				}
				seen[v] = struct{}{}
				mu.Unlock()
			}
		}()
	}

	prodWg.Wait()

	// Wait until every produced value has been consumed.
	backoff := iox.Backoff{}
	drainDeadline := time.Now().Add(10 * time.Second)
	for consumed.Load() < produced.Load() {
		if time.Now().After(drainDeadline) {
			break
		}
		backoff.Wait()
	}
	stopWork()
	moveWg.Wait()
	consWg.Wait()

	elapsed := time.Since(start)
	after := stm.Stats()

	res := Result{
		Mode:       cfg.Mode,
		Capacity:   cfg.Capacity,
		Producers:  cfg.Producers,
		Consumers:  cfg.Consumers,
		Produced:   produced.Load(),
		Consumed:   consumed.Load(),
		Elapsed:    elapsed,
		Throughput: float64(consumed.Load()) / elapsed.Seconds(),
		Commits:    after.Commits - before.Commits,
		Retries:    after.Retries - before.Retries,
		Conflicts:  after.Conflicts - before.Conflicts,
	}
	if cfg.Mode == ModeTransfer {
		res.Movers = cfg.Movers
	}

	if dup != nil {
		return res, dup
	}
	if res.Consumed != res.Produced {
		return res, fmt.Errorf("produced %d values but consumed %d", res.Produced, res.Consumed)
	}
	if cfg.Mode == ModeTransfer && moved.Load() != res.Produced {
		return res, fmt.Errorf("produced %d values but moved %d", res.Produced, moved.Load())
	}
	return res, nil
}
