package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func ok(out string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return out, nil }
}

func TestRun_Success(t *testing.T) {
	tasks := []Task{
		{Name: "json", Fn: ok("a.json")},
		{Name: "svg", Fn: ok("a.svg")},
		{Name: "dot", Fn: ok("a.dot")},
	}

	results := Run(context.Background(), tasks, 4)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.OK || r.Err != nil {
			t.Errorf("task %s should be OK", r.Name)
		}
		if r.Name != tasks[i].Name {
			t.Errorf("result %d is %s, want %s", i, r.Name, tasks[i].Name)
		}
	}
	if len(Failed(results)) != 0 {
		t.Error("no task should have failed")
	}
}

func TestRun_WithErrors(t *testing.T) {
	tasks := []Task{
		{Name: "ok-task", Fn: ok("")},
		{Name: "fail-task", Fn: func(context.Context) (string, error) {
			return "partial.svg", fmt.Errorf("simulated failure")
		}},
	}

	results := Run(context.Background(), tasks, 4)
	if !results[0].OK {
		t.Error("first task should be OK")
	}
	if results[1].OK || results[1].Err == nil {
		t.Error("second task should have failed")
	}
	if results[1].Output != "partial.svg" {
		t.Errorf("expected output %q, got %q", "partial.svg", results[1].Output)
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "fail-task" {
		t.Errorf("Failed = %+v", failed)
	}
}

func TestRun_Concurrency(t *testing.T) {
	var maxConcurrent, current int64

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{
			Name: fmt.Sprintf("task-%d", i),
			Fn: func(context.Context) (string, error) {
				c := atomic.AddInt64(&current, 1)
				for {
					old := atomic.LoadInt64(&maxConcurrent)
					if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return "", nil
			},
		}
	}

	results := Run(context.Background(), tasks, 2)
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if maxConcurrent > 2 {
		t.Errorf("max concurrent should be <= 2, got %d", maxConcurrent)
	}
}

func TestRun_DefaultConcurrency(t *testing.T) {
	results := Run(context.Background(), []Task{{Name: "test", Fn: ok("")}}, 0)
	if len(results) != 1 || !results[0].OK {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	results := Run(ctx, []Task{{Name: "never", Fn: func(context.Context) (string, error) {
		ran = true
		return "", nil
	}}}, 1)
	if ran {
		t.Error("task should not start after cancellation")
	}
	if results[0].OK || results[0].Err != context.Canceled {
		t.Errorf("expected cancelled result, got %+v", results[0])
	}
}
