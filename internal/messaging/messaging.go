// Package messaging publishes and consumes listing domain events.
package messaging

import (
	"context"
	"time"
)

// Event types published when listings and bids change.
const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"
	BidSubmitted   = "bid.submitted"
	BidAccepted    = "bid.accepted"
	BidRejected    = "bid.rejected"
)

// Event records something that happened to a listing.
type Event struct {
	Type       string    `json:"type"`
	ListingID  string    `json:"listingId"`
	ActorID    string    `json:"actorId"`
	BidID      string    `json:"bidId,omitempty"`
	AgentID    string    `json:"agentId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
