// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file contains examples with concurrent producer/consumer goroutines.

package tbq_test

import (
	"context"
	"fmt"
	"sync"

	"code.hybscloud.com/tbq"
	"code.hybscloud.com/tbq/stm"
)

// Example_workerPool demonstrates a worker pool where workers block on an
// empty job queue instead of polling.
func Example_workerPool() {
	type Job struct {
		ID    int
		Input int
	}

	jobs, _ := tbq.NewBounded[Job](2)
	results := make([]int, 5)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var done sync.WaitGroup
	done.Add(5)

	// Start 3 workers
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := jobs.Take(ctx)
				if err != nil {
					return
				}
				results[job.ID] = job.Input * job.Input
				done.Done()
			}
		}()
	}

	// Submit 5 jobs; Put blocks while the queue is full
	for i := range 5 {
		jobs.Put(ctx, Job{ID: i, Input: i + 1})
	}

	done.Wait()
	cancel()
	wg.Wait()

	for i, r := range results {
		fmt.Printf("Job %d: %d² = %d\n", i, i+1, r)
	}

	// Output:
	// Job 0: 1² = 1
	// Job 1: 2² = 4
	// Job 2: 3² = 9
	// Job 3: 4² = 16
	// Job 4: 5² = 25
}

// Example_pipeline demonstrates a stage that moves items between queues
// with each hand-off committed atomically, so no item is ever in flight
// outside a queue.
func Example_pipeline() {
	in, _ := tbq.NewBounded[int](4)
	out, _ := tbq.NewBounded[int](1)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			err := stm.AtomicallyContext(ctx, func(tx *stm.Tx) error {
				v, err := in.Read(tx)
				if err != nil {
					return err
				}
				return out.Write(tx, v*2)
			})
			if err != nil {
				return
			}
		}
	}()

	for i := 1; i <= 4; i++ {
		in.Put(ctx, i)
	}
	for range 4 {
		v, _ := out.Take(ctx)
		fmt.Println(v)
	}
	cancel()
	wg.Wait()

	// Output:
	// 2
	// 4
	// 6
	// 8
}
