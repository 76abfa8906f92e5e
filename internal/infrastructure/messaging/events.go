// Package messaging publishes domain events about the graph and its
// analyses.
package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventNodeCreated        = "NodeCreated"
	EventEdgeCreated        = "EdgeCreated"
	EventAnalyticsCompleted = "AnalyticsCompleted"
)

// Event is a domain event. Payload must be JSON-serialisable.
type Event struct {
	ID          string    `json:"eventId"`
	Type        string    `json:"eventType"`
	AggregateID string    `json:"aggregateId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload,omitempty"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType, aggregateID string, payload any) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NodeCreatedPayload is the payload of EventNodeCreated.
type NodeCreatedPayload struct {
	NodeID string  `json:"nodeId"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// EdgeCreatedPayload is the payload of EventEdgeCreated.
type EdgeCreatedPayload struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	EdgeID   string `json:"edgeId,omitempty"`
	Directed bool   `json:"directed,omitempty"`
}

// AnalyticsCompletedPayload is the payload of EventAnalyticsCompleted.
type AnalyticsCompletedPayload struct {
	NodeCount  int     `json:"nodeCount"`
	EdgeCount  int     `json:"edgeCount"`
	Algorithm  string  `json:"algorithm"`
	Outcome    string  `json:"outcome"`
	Cached     bool    `json:"cached"`
	DurationMS float64 `json:"durationMs"`
}
