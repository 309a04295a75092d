package worker

import (
	"context"
	"sync"
	"testing"
)

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(4)
	pool.Start(context.Background())

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 50; i++ {
		err := pool.Submit(func(ctx context.Context) {
			mu.Lock()
			ran++
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	pool.Close()

	if ran != 50 {
		t.Fatalf("ran %d jobs", ran)
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Start(context.Background())
	pool.Close()

	if err := pool.Submit(func(ctx context.Context) {}); err != ErrPoolClosed {
		t.Fatalf("err: %v", err)
	}
}

func TestPoolCloseTwice(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())
	pool.Close()
	pool.Close()
}

func TestPoolZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	pool.Start(context.Background())

	done := make(chan struct{})
	if err := pool.Submit(func(ctx context.Context) { close(done) }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
	pool.Close()
}
