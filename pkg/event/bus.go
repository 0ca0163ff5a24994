package event

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
)

var ErrRecipientNotFound = errors.New("target recipient not found")

// Bus notifies all of its attached recipients of pushed events.
// Handlers run asynchronously; a slow handler never blocks Push.
type Bus interface {
	Push(data any, topics ...string)
	PushTo(to string, data any, topics ...string) error
	AttachHandler(id string, h Handler, topics ...string) (handlerID string, replaced bool)
	AttachHandlerFunc(id string, fn HandlerFunc, topics ...string) (handlerID string, replaced bool)
	DetachRecipient(id string) (success bool)
	DetachAllRecipients() (n int)
}

type internalBus struct {
	mu sync.RWMutex
	ws map[string]*worker
}

func NewInternalBus() Bus {
	return &internalBus{
		ws: map[string]*worker{},
	}
}

func (b *internalBus) Push(data any, topics ...string) {
	e := New(data, topics...)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, w := range b.ws {
		w.push(e)
	}
}

func (b *internalBus) PushTo(to string, data any, topics ...string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	w, ok := b.ws[to]
	if !ok {
		return ErrRecipientNotFound
	}
	w.push(New(data, topics...))
	return nil
}

func (b *internalBus) AttachHandler(id string, h Handler, topics ...string) (string, bool) {
	if h == nil {
		panic(fmt.Sprintf("AttachHandler called with id %q and nil handler", id))
	}

	if len(topics) > 0 {
		h = topicFilter(topics, h)
	}

	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	old, replaced := b.ws[id]
	if replaced {
		old.close()
	}
	b.ws[id] = newWorker(h)

	return id, replaced
}

func (b *internalBus) AttachHandlerFunc(id string, fn HandlerFunc, topics ...string) (string, bool) {
	return b.AttachHandler(id, fn, topics...)
}

func (b *internalBus) DetachRecipient(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, ok := b.ws[id]
	if !ok {
		return false
	}
	w.close()
	delete(b.ws, id)
	return true
}

func (b *internalBus) DetachAllRecipients() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.ws)
	for _, w := range b.ws {
		w.close()
	}
	b.ws = map[string]*worker{}
	return n
}

func topicFilter(topics []string, h Handler) Handler {
	return HandlerFunc(func(e Event) {
		if e.HasAnyTopic(topics...) {
			h.Handle(e)
		}
	})
}

type worker struct {
	in        chan Event
	closeOnce sync.Once
	h         Handler
}

func newWorker(h Handler) *worker {
	w := &worker{
		in: make(chan Event, 100),
		h:  h,
	}
	go w.process()
	return w
}

func (w *worker) process() {
	for e := range w.in {
		w.h.Handle(e)
	}
}

// push drops the event if the worker's queue is full.
func (w *worker) push(e Event) {
	select {
	case w.in <- e:
	default:
	}
}

func (w *worker) close() {
	w.closeOnce.Do(func() {
		close(w.in)
	})
}
