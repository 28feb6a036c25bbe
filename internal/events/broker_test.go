package events

import (
	"sync"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

func TestBroker_SubscribePublish(t *testing.T) {
	b := NewBroker()

	var got []domain.ChangeEvent
	unsubscribe := b.Subscribe(func(ev domain.ChangeEvent) {
		got = append(got, ev)
	})

	b.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: 1})
	b.Publish(domain.ChangeEvent{Op: domain.ChangeDeleted, ID: 1})

	if len(got) != 2 {
		t.Fatalf("listener received %d events, want 2", len(got))
	}
	if got[0].Op != domain.ChangeAdded || got[1].Op != domain.ChangeDeleted {
		t.Errorf("events = %+v, want added then deleted", got)
	}

	unsubscribe()
	unsubscribe() // second call is a no-op

	b.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: 2})
	if len(got) != 2 {
		t.Errorf("listener received events after unsubscribe: %+v", got)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBroker_ListenerMayUnsubscribeItself(t *testing.T) {
	b := NewBroker()

	calls := 0
	var unsubscribe func()
	unsubscribe = b.Subscribe(func(domain.ChangeEvent) {
		calls++
		unsubscribe()
	})

	b.Publish(domain.ChangeEvent{Op: domain.ChangeUpdated, ID: 3})
	b.Publish(domain.ChangeEvent{Op: domain.ChangeUpdated, ID: 3})

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestBroker_ConcurrentSubscribe(t *testing.T) {
	b := NewBroker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := b.Subscribe(func(domain.ChangeEvent) {})
			b.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: 1})
			unsub()
		}()
	}
	wg.Wait()

	if b.Len() != 0 {
		t.Errorf("Len() = %d after all unsubscribed, want 0", b.Len())
	}
}
