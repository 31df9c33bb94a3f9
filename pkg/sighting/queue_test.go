package sighting

import (
	"fmt"
	"testing"
	"time"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()

	const n = 100
	for i := 0; i < n; i++ {
		q.Put(&Event{HostName: fmt.Sprintf("HOST-%03d", i)})
	}
	q.PutSentinel()

	for i := 0; i < n; i++ {
		ev, ok := q.Get()
		if !ok {
			t.Fatalf("Get() returned sentinel after %d events, want %d", i, n)
		}
		want := fmt.Sprintf("HOST-%03d", i)
		if ev.HostName != want {
			t.Errorf("Get() #%d = %q, want %q", i, ev.HostName, want)
		}
	}

	if _, ok := q.Get(); ok {
		t.Error("Get() after all events should return the sentinel")
	}
}

func TestQueueGetBlocksUntilPut(t *testing.T) {
	q := NewQueue()

	got := make(chan *Event, 1)
	go func() {
		ev, ok := q.Get()
		if !ok {
			t.Error("Get() returned sentinel, want event")
		}
		got <- ev
	}()

	// The consumer should be parked until an item arrives.
	select {
	case <-got:
		t.Fatal("Get() returned before anything was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	q.Put(&Event{HostName: "ALICE-PC"})

	select {
	case ev := <-got:
		if ev.HostName != "ALICE-PC" {
			t.Errorf("Get() = %q, want %q", ev.HostName, "ALICE-PC")
		}
	case <-time.After(time.Second):
		t.Fatal("Get() did not wake up after Put()")
	}
}

func TestQueueSentinelWakesConsumer(t *testing.T) {
	q := NewQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Get()
		done <- ok
	}()

	q.PutSentinel()

	select {
	case ok := <-done:
		if ok {
			t.Error("Get() = ok, want sentinel")
		}
	case <-time.After(time.Second):
		t.Fatal("Get() did not observe the sentinel")
	}
}

func TestQueuePutNeverBlocks(t *testing.T) {
	q := NewQueue()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			q.Put(&Event{HostName: "BULK"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Put() blocked with no consumer attached")
	}
	if got := q.Len(); got != 10000 {
		t.Errorf("Len() = %d, want %d", got, 10000)
	}
}

func TestQueuePutAfterSentinelNotConsumed(t *testing.T) {
	q := NewQueue()
	q.Put(&Event{HostName: "BEFORE"})
	q.PutSentinel()
	q.Put(&Event{HostName: "AFTER"})

	ev, ok := q.Get()
	if !ok || ev.HostName != "BEFORE" {
		t.Fatalf("Get() = %v/%v, want BEFORE", ev, ok)
	}
	if _, ok := q.Get(); ok {
		t.Error("Get() should observe the sentinel before post-sentinel events")
	}
}
