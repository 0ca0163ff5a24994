package event

import (
	"time"

	"github.com/gofrs/uuid"
)

// Event is a notification pushed onto a Bus, for example a server that
// went offline during a refresh. Data carries the typed payload that
// belongs to the topics.
type Event struct {
	ID         string
	OccurredAt time.Time
	Topics     []string
	Data       any
}

func (e Event) HasTopic(topic string) bool {
	for _, t := range e.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// HasAnyTopic reports whether the event was pushed under at least one of topics.
func (e Event) HasAnyTopic(topics ...string) bool {
	for _, topic := range topics {
		if e.HasTopic(topic) {
			return true
		}
	}
	return false
}

// Handler receives events on the worker goroutine of its bus recipient.
// Slow handlers only delay their own recipient.
type Handler interface {
	Handle(Event)
}

type HandlerFunc func(Event)

func (fn HandlerFunc) Handle(e Event) {
	fn(e)
}

// New stamps data with a random ID and the current time.
func New(data any, topics ...string) Event {
	return Event{
		ID:         uuid.Must(uuid.NewV4()).String(),
		OccurredAt: time.Now(),
		Topics:     topics,
		Data:       data,
	}
}
