package workqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_RunsTasksInOrder(t *testing.T) {
	q := New(8)
	defer q.Close()

	var mu sync.Mutex
	var got []int

	for i := 0; i < 5; i++ {
		i := i
		if err := q.Enqueue(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Enqueue #%d: %v", i, err)
		}
	}

	// Do espera a su propia tarea, y con un solo worker eso implica que
	// todo lo anterior ya corrió.
	if err := q.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("tasks out of order: %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 tasks, ran %d", len(got))
	}
}

func TestQueue_DoPropagatesError(t *testing.T) {
	q := New(8)
	defer q.Close()

	want := errors.New("boom")
	err := q.Do(context.Background(), func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("Do err = %v, want %v", err, want)
	}
}

func TestQueue_DoCanceledCallerStillRunsTask(t *testing.T) {
	q := New(8)
	defer q.Close()

	block := make(chan struct{})
	ran := make(chan struct{})

	// ocupar el worker
	if err := q.Enqueue(func() { <-block }); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Do(ctx, func(context.Context) error {
		close(ran)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do err = %v, want context.Canceled", err)
	}

	close(block)
	select {
	case <-ran:
		// la tarea corre aunque el caller ya no espere
	case <-time.After(time.Second):
		t.Fatal("task dropped after caller cancellation")
	}
}

func TestQueue_CloseDrainsAndRejects(t *testing.T) {
	q := New(8)

	done := make(chan struct{})
	if err := q.Enqueue(func() { close(done) }); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	q.Close()

	select {
	case <-done:
	default:
		t.Fatal("Close must drain pending tasks")
	}

	if err := q.Enqueue(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Enqueue after close: err = %v, want ErrClosed", err)
	}
	if err := q.Do(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("Do after close: err = %v, want ErrClosed", err)
	}
}
