package event_test

import (
	"sync"
	"testing"

	"github.com/vastrahub/vastra/pkg/event"
)

func TestFireSynchronous(t *testing.T) {
	defer event.Flush()

	var got []interface{}
	event.Listen(event.OrderCreated, func(payload interface{}) {
		got = append(got, payload)
	})
	event.Listen(event.OrderCreated, func(payload interface{}) {
		got = append(got, payload)
	})

	event.Fire(event.OrderCreated, "order-1")

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0] != "order-1" {
		t.Errorf("unexpected payload: %v", got[0])
	}
}

func TestFireUnknownEventIsNoop(t *testing.T) {
	defer event.Flush()
	event.Fire("never.registered", nil) // must not panic
}

func TestFireAsyncDeliversToAll(t *testing.T) {
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		event.Listen(event.OrderStatusChanged, func(interface{}) {
			wg.Done()
		})
	}

	event.FireAsync(event.OrderStatusChanged, nil)
	wg.Wait()
}

func TestFlushRemovesListeners(t *testing.T) {
	called := false
	event.Listen(event.OrderDeleted, func(interface{}) { called = true })
	event.Flush()
	event.Fire(event.OrderDeleted, nil)
	if called {
		t.Error("expected no delivery after Flush")
	}
}
