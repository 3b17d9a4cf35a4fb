package events

import "time"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Session Events

// DraftStaged is raised when a draft page accepts a patch
type DraftStaged struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Page      int    `json:"page"`
}

// NewDraftStaged creates a DraftStaged event
func NewDraftStaged(sessionID string, page int, timestamp time.Time) DraftStaged {
	return DraftStaged{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.draft_staged",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID: sessionID,
		Page:      page,
	}
}

// SessionCommitted is raised when the commit pipeline finishes
type SessionCommitted struct {
	BaseEvent
	SessionID  string `json:"session_id"`
	StateHash  string `json:"state_hash"`
	OpsApplied int    `json:"ops_applied"`
}

// NewSessionCommitted creates a SessionCommitted event
func NewSessionCommitted(sessionID, stateHash string, opsApplied int, timestamp time.Time) SessionCommitted {
	return SessionCommitted{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.committed",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID:  sessionID,
		StateHash:  stateHash,
		OpsApplied: opsApplied,
	}
}

// MarkerRecorded is raised when the ledger accepts a replay marker
type MarkerRecorded struct {
	BaseEvent
	SessionID string `json:"session_id"`
	MarkerID  string `json:"marker_id"`
	StateHash string `json:"state_hash"`
}

// NewMarkerRecorded creates a MarkerRecorded event
func NewMarkerRecorded(sessionID, markerID, stateHash string, timestamp time.Time) MarkerRecorded {
	return MarkerRecorded{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   "session.marker_recorded",
			Timestamp:   timestamp,
			Version:     1,
		},
		SessionID: sessionID,
		MarkerID:  markerID,
		StateHash: stateHash,
	}
}
