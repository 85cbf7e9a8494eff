package listing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/messaging"
)

// Service authorizes listing operations and runs them against the
// repository. Each mutation is a single conditional write; a concurrent
// writer makes it fail with ErrConflict.
type Service struct {
	repo   Repository
	events messaging.Publisher
	now    func() time.Time
}

// NewService creates a listing service. A nil publisher discards events.
func NewService(repo Repository, events messaging.Publisher) *Service {
	if events == nil {
		events = messaging.Nop{}
	}
	return &Service{
		repo:   repo,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Now returns the service clock, used for read-time fields.
func (s *Service) Now() time.Time {
	return s.now()
}

// Create stores a new listing owned by p.
func (s *Service) Create(ctx context.Context, p auth.Principal, in Input) (*Listing, error) {
	if err := authorize(p, nil, ActionCreate); err != nil {
		return nil, err
	}

	l, err := New(in, Creator{ID: p.ID, Role: p.Role}, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("saving listing: %w", err)
	}

	s.publish(ctx, messaging.Event{Type: messaging.ListingCreated, ListingID: l.ID, ActorID: p.ID})
	return l, nil
}

// Get returns a listing and counts the view.
func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	if err := s.repo.AddView(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// List runs the public search.
func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	return s.repo.List(ctx, q)
}

// Update applies a partial update from the listing's creator.
func (s *Service) Update(ctx context.Context, p auth.Principal, id string, patch Patch) (*Listing, error) {
	if err := checkRole(p, ActionUpdate); err != nil {
		return nil, err
	}

	l, err := s.repo.Mutate(ctx, id, func(l *Listing) error {
		if err := authorize(p, l, ActionUpdate); err != nil {
			return err
		}
		if err := l.Apply(patch, s.now()); err != nil {
			return err
		}
		Normalize(l)
		return l.Validate()
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.Event{Type: messaging.ListingUpdated, ListingID: id, ActorID: p.ID})
	return l, nil
}

// Delete removes a listing on behalf of its creator.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if err := checkRole(p, ActionDelete); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id, func(l *Listing) error {
		return authorize(p, l, ActionDelete)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, messaging.Event{Type: messaging.ListingDeleted, ListingID: id, ActorID: p.ID})
	return nil
}

// SubmitBid records p's bid on listing id.
func (s *Service) SubmitBid(ctx context.Context, p auth.Principal, id string, in BidInput) (*Listing, Bid, error) {
	if err := checkRole(p, ActionSubmitBid); err != nil {
		return nil, Bid{}, err
	}

	var bid Bid
	l, err := s.repo.Mutate(ctx, id, func(l *Listing) error {
		var err error
		bid, err = l.SubmitBid(p, in, s.now())
		return err
	})
	if err != nil {
		return nil, Bid{}, err
	}

	s.publish(ctx, messaging.Event{
		Type:      messaging.BidSubmitted,
		ListingID: id,
		ActorID:   p.ID,
		BidID:     bid.ID,
		AgentID:   bid.AgentID,
	})
	return l, bid, nil
}

// AcceptBid selects the bid's agent for listing id.
func (s *Service) AcceptBid(ctx context.Context, p auth.Principal, id, bidID string) (*Listing, error) {
	return s.decideBid(ctx, p, id, bidID, ActionAcceptBid)
}

// RejectBid rejects one bid on listing id.
func (s *Service) RejectBid(ctx context.Context, p auth.Principal, id, bidID string) (*Listing, error) {
	return s.decideBid(ctx, p, id, bidID, ActionRejectBid)
}

func (s *Service) decideBid(ctx context.Context, p auth.Principal, id, bidID string, a Action) (*Listing, error) {
	if err := checkRole(p, a); err != nil {
		return nil, err
	}

	var changed []Bid
	l, err := s.repo.Mutate(ctx, id, func(l *Listing) error {
		before := l.AgentBids.statuses()
		var err error
		if a == ActionAcceptBid {
			_, err = l.AcceptBid(bidID, p, s.now())
		} else {
			_, err = l.RejectBid(bidID, p, s.now())
		}
		if err != nil {
			return err
		}
		changed = l.AgentBids.Changed(before)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// One event per bid whose status moved; repeated decisions publish nothing.
	for _, b := range changed {
		eventType := messaging.BidRejected
		if b.Status == BidAccepted {
			eventType = messaging.BidAccepted
		}
		s.publish(ctx, messaging.Event{
			Type:      eventType,
			ListingID: id,
			ActorID:   p.ID,
			BidID:     b.ID,
			AgentID:   b.AgentID,
		})
	}
	return l, nil
}

// Bids returns listing id for its creator, who alone may see its bids.
func (s *Service) Bids(ctx context.Context, p auth.Principal, id string) (*Listing, error) {
	if err := checkRole(p, ActionViewBids); err != nil {
		return nil, err
	}

	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, l, ActionViewBids); err != nil {
		return nil, err
	}
	return l, nil
}

// publish sends e without failing the request that caused it.
func (s *Service) publish(ctx context.Context, e messaging.Event) {
	e.OccurredAt = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("publishing event", "type", e.Type, "listing_id", e.ListingID, "error", err)
	}
}
