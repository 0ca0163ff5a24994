package mcstatus

import "time"

const (
	StatusResolvedEventTopic   = "StatusResolved"
	StatusFailedEventTopic     = "StatusFailed"
	ServerOnlineEventTopic     = "ServerOnline"
	ServerOfflineEventTopic    = "ServerOffline"
	RefreshCompletedEventTopic = "RefreshCompleted"
)

// ResolvedFrom describes where a returned status came from.
type ResolvedFrom string

const (
	ResolvedFromCache   ResolvedFrom = "cache"
	ResolvedFromStale   ResolvedFrom = "stale"
	ResolvedFromPrimary ResolvedFrom = "primary"
	ResolvedFromLegacy  ResolvedFrom = "legacy"
)

type StatusResolvedEvent struct {
	Address      string
	Status       ServerStatus
	ResolvedFrom ResolvedFrom
}

type StatusFailedEvent struct {
	Address string
	Err     error
}

type ServerOnlineEvent struct {
	Endpoint ServerEndpoint
	Status   ServerStatus
}

type ServerOfflineEvent struct {
	Endpoint ServerEndpoint
	Status   ServerStatus
}

type RefreshCompletedEvent struct {
	Outcomes []Outcome
	Duration time.Duration
}
