// Package fanout provides a settle-all combinator for issuing independent
// upstream calls concurrently. Every call runs to completion (or its own
// timeout); one call's failure never cancels the others.
package fanout

import (
	"context"
	"fmt"
	"sync"
)

// Result holds the outcome of one settled task.
type Result[T any] struct {
	Value T
	Err   error
}

// Task is one unit of work to settle.
type Task[T any] func(ctx context.Context) (T, error)

// SettleAll runs every task concurrently and waits for all of them. Results
// are returned in task order. A panicking task settles as an error rather
// than taking down the request.
func SettleAll[T any](ctx context.Context, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					results[i] = Result[T]{Err: fmt.Errorf("task panicked: %v", p)}
				}
			}()
			v, err := task(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}(i, task)
	}
	wg.Wait()

	return results
}

// BestOf runs every task concurrently, scores the successful results, and
// returns the highest-scoring one. Failures are ignored unless every task
// fails, in which case ok is false. Ties keep the earliest task, so callers
// can order tasks by preference.
func BestOf[T any](ctx context.Context, tasks []Task[T], score func(T) int) (T, bool) {
	results := SettleAll(ctx, tasks)

	var best T
	bestScore := 0
	ok := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		s := score(r.Value)
		if !ok || s > bestScore {
			best = r.Value
			bestScore = s
			ok = true
		}
	}
	return best, ok
}
