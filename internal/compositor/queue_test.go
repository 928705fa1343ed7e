package compositor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueue_DoRunsOnOwner(t *testing.T) {
	q := NewQueue(0)
	stop := make(chan struct{})
	owner := make(chan struct{})
	go func() {
		defer close(owner)
		for {
			select {
			case fn := <-q.C():
				fn()
			case <-stop:
				return
			}
		}
	}()
	defer func() {
		close(stop)
		<-owner
	}()

	counter := 0
	for i := 0; i < 10; i++ {
		if err := q.Do(context.Background(), func() { counter++ }); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	if counter != 10 {
		t.Fatalf("counter = %d, want 10", counter)
	}
}

func TestQueue_DoHonoursContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Do(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() with nobody draining = %v, want deadline exceeded", err)
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue(4)
	ran := 0
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- q.Do(context.Background(), func() { ran++ })
		}()
	}

	deadline := time.After(2 * time.Second)
	total := 0
	for total < 2 {
		select {
		case <-deadline:
			t.Fatalf("drained %d closures before deadline, want 2", total)
		default:
		}
		total += q.Drain()
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	if ran != 2 {
		t.Fatalf("ran = %d, want 2", ran)
	}
}

func TestQueue_ClosedRejects(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	ran := false
	err := q.Do(context.Background(), func() { ran = true })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Do() after Close = %v, want ErrQueueClosed", err)
	}
	if ran {
		t.Fatalf("closure ran after Close")
	}
}
