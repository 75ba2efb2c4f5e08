package parallel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPoolSubmitAndWait(t *testing.T) {
	ctx := context.Background()

	t.Run("single job", func(t *testing.T) {
		pool := NewPool[string](ctx, 2, false)
		pool.Submit("dev1", func(context.Context) (string, error) {
			return "ok", nil
		})

		results, errs := pool.Wait()
		if len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].ID != "dev1" || results[0].Value != "ok" {
			t.Errorf("unexpected result %+v", results[0])
		}
	})

	t.Run("multiple jobs", func(t *testing.T) {
		pool := NewPool[string](ctx, 4, false)
		ids := []string{"a", "b", "c"}
		for _, id := range ids {
			pool.Submit(id, func(context.Context) (string, error) {
				return id + "!", nil
			})
		}

		results, _ := pool.Wait()
		if len(results) != len(ids) {
			t.Fatalf("expected %d results, got %d", len(ids), len(results))
		}
		got := make(map[string]string)
		for _, r := range results {
			got[r.ID] = r.Value
		}
		for _, id := range ids {
			if got[id] != id+"!" {
				t.Errorf("result for %s: %q", id, got[id])
			}
		}
	})

	t.Run("respects max workers", func(t *testing.T) {
		pool := NewPool[int](ctx, 2, false)

		var mu sync.Mutex
		current, peak := 0, 0
		for i := 0; i < 5; i++ {
			pool.Submit("", func(context.Context) (int, error) {
				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()

				time.Sleep(30 * time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
				return 0, nil
			})
		}

		pool.Wait()
		if peak > 2 {
			t.Errorf("expected at most 2 concurrent jobs, got %d", peak)
		}
	})

	t.Run("unlimited workers", func(t *testing.T) {
		pool := NewPool[int](ctx, 0, false)
		for i := 0; i < 10; i++ {
			pool.Submit("", func(context.Context) (int, error) {
				time.Sleep(5 * time.Millisecond)
				return i, nil
			})
		}
		results, _ := pool.Wait()
		if len(results) != 10 {
			t.Errorf("expected 10 results, got %d", len(results))
		}
	})
}

func TestPoolErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("errors are collected", func(t *testing.T) {
		pool := NewPool[int](ctx, 2, false)
		pool.Submit("a", func(context.Context) (int, error) { return 1, nil })
		pool.Submit("b", func(context.Context) (int, error) { return 0, errors.New("offline") })
		pool.Submit("c", func(context.Context) (int, error) { return 3, nil })

		results, errs := pool.Wait()
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d", len(errs))
		}
		if errs[0].Error() != "b: offline" {
			t.Errorf("error = %q", errs[0])
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
	})

	t.Run("failFast stops pending jobs", func(t *testing.T) {
		pool := NewPool[int](ctx, 2, true)

		var mu sync.Mutex
		executed := 0
		for i := 0; i < 5; i++ {
			pool.Submit("", func(ctx context.Context) (int, error) {
				mu.Lock()
				executed++
				n := executed
				mu.Unlock()

				if n == 2 {
					return 0, errors.New("fail fast")
				}
				time.Sleep(100 * time.Millisecond)
				return n, nil
			})
		}

		_, errs := pool.Wait()
		if executed == 5 {
			t.Error("failFast did not stop execution early")
		}
		if len(errs) == 0 {
			t.Error("expected at least one error")
		}
	})
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[int](ctx, 2, false)

	var mu sync.Mutex
	executed := 0
	for i := 0; i < 10; i++ {
		pool.Submit("", func(context.Context) (int, error) {
			mu.Lock()
			executed++
			mu.Unlock()
			time.Sleep(50 * time.Millisecond)
			return 0, nil
		})
	}
	go func() {
		time.Sleep(75 * time.Millisecond)
		cancel()
	}()

	pool.Wait()
	if executed >= 10 {
		t.Errorf("expected fewer than 10 jobs after cancel, got %d", executed)
	}
}

func TestPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool[int](ctx, 1, false)
	ran := false
	pool.Submit("late", func(context.Context) (int, error) {
		ran = true
		return 0, nil
	})
	results, _ := pool.Wait()
	if ran || len(results) != 0 {
		t.Errorf("job ran after cancel: ran=%v results=%d", ran, len(results))
	}
}

func TestPoolRecordsDuration(t *testing.T) {
	pool := NewPool[int](context.Background(), 1, false)
	pool.Submit("", func(context.Context) (int, error) {
		time.Sleep(20 * time.Millisecond)
		return 0, nil
	})
	results, _ := pool.Wait()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Duration < 20*time.Millisecond {
		t.Errorf("expected duration >= 20ms, got %v", results[0].Duration)
	}
}
