// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tbq_test

import (
	"context"
	"fmt"
	"time"

	"code.hybscloud.com/tbq"
	"code.hybscloud.com/tbq/stm"
)

// ExampleNewBounded demonstrates basic FIFO usage.
func ExampleNewBounded() {
	q, err := tbq.NewBounded[int](4)
	if err != nil {
		panic(err)
	}

	for i := 1; i <= 3; i++ {
		v := i * 10
		q.Enqueue(&v)
	}

	for range 3 {
		v, _ := q.Dequeue()
		fmt.Println(v)
	}

	_, err = q.Dequeue()
	fmt.Println(tbq.IsWouldBlock(err))

	// Output:
	// 10
	// 20
	// 30
	// true
}

// ExampleNewBounded_invalidCapacity demonstrates capacity validation.
func ExampleNewBounded_invalidCapacity() {
	_, err := tbq.NewBounded[int](0)
	fmt.Println(err)

	// Output:
	// tbq: invalid capacity: 0
}

// ExampleBounded_UnGet demonstrates pushing an element back onto the head.
func ExampleBounded_UnGet() {
	q, _ := tbq.NewBounded[string](4)
	ctx := context.Background()
	q.Put(ctx, "b")
	q.Put(ctx, "c")

	// Inspect the head and put it back unless it is the one we want.
	stm.Atomically(func(tx *stm.Tx) error {
		v, err := q.Read(tx)
		if err != nil {
			return err
		}
		if v != "a" {
			return q.UnGet(tx, v)
		}
		return nil
	})
	q.PutFront(ctx, "a")

	fmt.Println(q.Drain())

	// Output:
	// [a b c]
}

// ExampleBounded_Flush demonstrates draining inside a larger transaction.
func ExampleBounded_Flush() {
	q, _ := tbq.NewBounded[int](8)
	total := stm.NewVar(0)
	for i := 1; i <= 4; i++ {
		q.Enqueue(&i)
	}

	// Drain and account for the batch in one commit.
	batch, _ := stm.Do(func(tx *stm.Tx) ([]int, error) {
		b := q.Flush(tx)
		sum := total.Get(tx)
		for _, v := range b {
			sum += v
		}
		total.Set(tx, sum)
		return b, nil
	})

	fmt.Println(batch, total.Load(), q.Size())

	// Output:
	// [1 2 3 4] 10 0
}

// Example_transfer demonstrates moving an element between two queues
// atomically.
func Example_transfer() {
	inbox, _ := tbq.NewBounded[string](2)
	outbox, _ := tbq.NewBounded[string](2)
	inbox.Put(context.Background(), "job-1")

	err := stm.Atomically(func(tx *stm.Tx) error {
		job, err := inbox.Read(tx)
		if err != nil {
			return err
		}
		return outbox.Write(tx, job+" done")
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(inbox.Size(), outbox.Drain())

	// Output:
	// 0 [job-1 done]
}

// Example_priority demonstrates choosing between queues with OrElse.
func Example_priority() {
	high, _ := tbq.NewBounded[string](4)
	low, _ := tbq.NewBounded[string](4)
	ctx := context.Background()
	low.Put(ctx, "low-1")
	high.Put(ctx, "high-1")
	low.Put(ctx, "low-2")

	next := func() string {
		v, _ := stm.Do(func(tx *stm.Tx) (string, error) {
			var s string
			err := stm.OrElse(tx,
				func(tx *stm.Tx) (err error) { s, err = high.Read(tx); return },
				func(tx *stm.Tx) (err error) { s, err = low.Read(tx); return },
			)
			return s, err
		})
		return v
	}

	for range 3 {
		fmt.Println(next())
	}

	// Output:
	// high-1
	// low-1
	// low-2
}

// Example_timeout demonstrates giving up on a blocking read after a delay.
func Example_timeout() {
	q, _ := tbq.NewBounded[int](1)
	deadline := stm.After(10 * time.Millisecond)

	v, ok := 0, false
	stm.Atomically(func(tx *stm.Tx) error {
		return stm.OrElse(tx,
			func(tx *stm.Tx) error {
				got, err := q.Read(tx)
				v, ok = got, err == nil
				return err
			},
			func(tx *stm.Tx) error {
				v, ok = 0, false
				return stm.Check(deadline.Get(tx))
			})
	})

	fmt.Println(v, ok)

	// Output:
	// 0 false
}
