package queue

import (
	"sync"
	"testing"
	"time"
)

func TestUnboundedFIFOOrder(t *testing.T) {
	q := NewUnbounded[int]()
	for i := 0; i < 5; i++ {
		q.Put(i)
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Take()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
}

func TestUnboundedTakeBlocksUntilPut(t *testing.T) {
	q := NewUnbounded[string]()
	done := make(chan string)
	go func() {
		v, ok := q.Take()
		if !ok {
			done <- "closed"
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Take returned before any item was put")
	case <-time.After(20 * time.Millisecond):
	}

	q.Put("hello")
	select {
	case v := <-done:
		if v != "hello" {
			t.Fatalf("expected hello, got %s", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked after Put")
	}
}

func TestUnboundedCloseWakesBlockedTake(t *testing.T) {
	q := NewUnbounded[int]()
	done := make(chan bool)
	go func() {
		_, ok := q.Take()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Take to report false after Close with no items")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake blocked Take")
	}
}

func TestUnboundedTryTakeNeverBlocks(t *testing.T) {
	q := NewUnbounded[int]()

	if _, ok := q.TryTake(); ok {
		t.Fatal("expected TryTake on an empty queue to report false immediately")
	}

	q.Put(42)
	v, ok := q.TryTake()
	if !ok || v != 42 {
		t.Fatalf("expected TryTake to return the buffered item, got %d (ok=%v)", v, ok)
	}

	if _, ok := q.TryTake(); ok {
		t.Fatal("expected TryTake to report false once drained")
	}
}

func TestUnboundedLen(t *testing.T) {
	q := NewUnbounded[int]()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue length 0, got %d", q.Len())
	}
	q.Put(1)
	q.Put(2)
	if q.Len() != 2 {
		t.Fatalf("expected length 2, got %d", q.Len())
	}
}

func TestBoundedPutBlocksWhenFull(t *testing.T) {
	q := NewBounded[int](1)
	q.Put(1)

	putDone := make(chan struct{})
	go func() {
		q.Put(2)
		close(putDone)
	}()

	select {
	case <-putDone:
		t.Fatal("Put should have blocked on a full bounded queue")
	case <-time.After(20 * time.Millisecond):
	}

	v, ok := q.Take()
	if !ok || v != 1 {
		t.Fatalf("expected 1, got %d (ok=%v)", v, ok)
	}

	select {
	case <-putDone:
	case <-time.After(time.Second):
		t.Fatal("Put never unblocked after Take freed capacity")
	}
}

func TestBoundedCloseAndDrain(t *testing.T) {
	q := NewBounded[int](4)
	q.Put(1)
	q.Put(2)
	q.Drain()

	if n := len(q.ch); n != 0 {
		t.Fatalf("expected drained queue to have no items buffered, got %d", n)
	}

	q.Close()
	if _, ok := q.Take(); ok {
		t.Fatal("expected Take on a closed, empty channel to report false")
	}
}

func TestUnboundedConcurrentProducersConsumers(t *testing.T) {
	q := NewUnbounded[int]()
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.Put(v)
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		v, ok := q.Take()
		if !ok {
			t.Fatalf("unexpected closed queue at item %d", i)
		}
		seen[v] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct items, got %d", n, len(seen))
	}
}
