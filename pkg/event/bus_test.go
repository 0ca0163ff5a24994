package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/haveachin/mcstatus/pkg/event"
)

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func TestInternalBus_Push(t *testing.T) {
	tt := []struct {
		name       string
		topics     []string
		pushTopic  string
		shouldRecv bool
	}{
		{
			name:       "WithoutTopicFilter",
			pushTopic:  "ServerOnline",
			shouldRecv: true,
		},
		{
			name:       "WithMatchingTopic",
			topics:     []string{"ServerOffline", "ServerOnline"},
			pushTopic:  "ServerOnline",
			shouldRecv: true,
		},
		{
			name:       "WithNonMatchingTopic",
			topics:     []string{"ServerOffline"},
			pushTopic:  "ServerOnline",
			shouldRecv: false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			bus := event.NewInternalBus()
			defer bus.DetachAllRecipients()

			var wg sync.WaitGroup
			wg.Add(1)
			bus.AttachHandlerFunc("", func(e event.Event) {
				if e.Data != "payload" {
					t.Errorf("got data %v; want payload", e.Data)
				}
				wg.Done()
			}, tc.topics...)

			bus.Push("payload", tc.pushTopic)

			received := waitTimeout(&wg, 100*time.Millisecond)
			if received != tc.shouldRecv {
				t.Errorf("received = %v; want %v", received, tc.shouldRecv)
			}
		})
	}
}

func TestInternalBus_PushTo(t *testing.T) {
	bus := event.NewInternalBus()
	defer bus.DetachAllRecipients()

	var wg sync.WaitGroup
	wg.Add(1)
	id, _ := bus.AttachHandlerFunc("target", func(e event.Event) {
		wg.Done()
	})

	if err := bus.PushTo(id, nil, "RefreshCompleted"); err != nil {
		t.Fatal(err)
	}

	if !waitTimeout(&wg, 100*time.Millisecond) {
		t.Error("event was not delivered")
	}

	if err := bus.PushTo("unknown", nil); err != event.ErrRecipientNotFound {
		t.Errorf("got %v; want %v", err, event.ErrRecipientNotFound)
	}
}

func TestInternalBus_AttachHandler_Replaces(t *testing.T) {
	bus := event.NewInternalBus()
	defer bus.DetachAllRecipients()

	noop := func(event.Event) {}
	if _, replaced := bus.AttachHandlerFunc("id", noop); replaced {
		t.Error("first attach reported a replacement")
	}
	if _, replaced := bus.AttachHandlerFunc("id", noop); !replaced {
		t.Error("second attach did not report a replacement")
	}

	if !bus.DetachRecipient("id") {
		t.Error("detach failed")
	}
	if bus.DetachRecipient("id") {
		t.Error("detach of removed recipient succeeded")
	}
}

func TestEvent_HasAnyTopic(t *testing.T) {
	e := event.New(nil, "ServerOnline", "StatusResolved")

	tt := []struct {
		name   string
		topics []string
		want   bool
	}{
		{name: "Match", topics: []string{"ServerOffline", "StatusResolved"}, want: true},
		{name: "NoMatch", topics: []string{"ServerOffline"}, want: false},
		{name: "Empty", want: false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.HasAnyTopic(tc.topics...); got != tc.want {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}
}
