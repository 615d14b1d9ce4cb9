// Package parallel runs independent jobs, such as writing one export per
// format, with a concurrency limit and collects every result.
package parallel

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one task.
type Result struct {
	Name    string
	OK      bool
	Err     error
	Output  string
	Elapsed time.Duration
}

// Task is a named job. Output is free text, typically a written path.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Run executes tasks with at most limit running at once. Results keep the
// order tasks were submitted. A failing task does not cancel the others;
// ctx cancellation does stop tasks that have not started yet.
func Run(ctx context.Context, tasks []Task, limit int) []Result {
	if limit < 1 {
		limit = 4
	}

	results := make([]Result, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Name: task.Name, Err: err}
				return nil
			}
			start := time.Now()
			output, err := task.Fn(ctx)
			results[i] = Result{
				Name:    task.Name,
				OK:      err == nil,
				Err:     err,
				Output:  output,
				Elapsed: time.Since(start),
			}
			return nil // never fail the group
		})
	}

	_ = g.Wait()
	return results
}

// Failed returns the results that did not succeed.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}
