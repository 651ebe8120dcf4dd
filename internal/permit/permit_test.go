package permit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected New(0) to panic")
		}
	}()
	New(0)
}

func TestPutWithoutTakePanics(t *testing.T) {
	p := New(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected unmatched Put to panic")
		}
	}()
	p.Put()
}

func TestTakeRespectsContextCancellation(t *testing.T) {
	p := New(1)
	if err := p.Take(context.Background()); err != nil {
		t.Fatalf("first Take: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Take(ctx); err == nil {
		t.Fatal("expected Take to fail once the pool is exhausted and ctx expires")
	}
}

// TestBoundsConcurrency is the external sort's property 5: the number of
// goroutines inside the guarded section never exceeds the pool's capacity,
// regardless of how many goroutines are contending for permits.
func TestBoundsConcurrency(t *testing.T) {
	const capacity = 4
	const tasks = 64

	p := New(capacity)
	var inFlight int32
	var maxObserved int32
	done := make(chan struct{}, tasks)

	for i := 0; i < tasks; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := p.Take(context.Background()); err != nil {
				t.Error(err)
				return
			}
			defer p.Put()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				cur := atomic.LoadInt32(&maxObserved)
				if n <= cur || atomic.CompareAndSwapInt32(&maxObserved, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}

	for i := 0; i < tasks; i++ {
		<-done
	}

	if maxObserved > capacity {
		t.Fatalf("observed %d goroutines concurrently inside the guarded section, want <= %d", maxObserved, capacity)
	}
}

func TestCap(t *testing.T) {
	p := New(7)
	if p.Cap() != 7 {
		t.Fatalf("Cap() = %d, want 7", p.Cap())
	}
}
