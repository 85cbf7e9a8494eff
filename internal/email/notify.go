package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/messaging"
)

// UserLookup finds accounts by ID.
type UserLookup interface {
	ByID(ctx context.Context, id string) (*auth.User, error)
}

// Notifier emails agents when a landlord decides on their bid.
type Notifier struct {
	users   UserLookup
	sender  Sender
	baseURL string
}

// NewNotifier creates a notifier. baseURL prefixes listing links.
func NewNotifier(users UserLookup, sender Sender, baseURL string) *Notifier {
	return &Notifier{users: users, sender: sender, baseURL: baseURL}
}

// Handle sends the email for e, if any. It satisfies messaging.Handler.
func (n *Notifier) Handle(ctx context.Context, e messaging.Event) error {
	var subject, verdict string
	switch e.Type {
	case messaging.BidAccepted:
		subject = "Your bid was accepted"
		verdict = "accepted. The landlord has selected you as the agent for this listing"
	case messaging.BidRejected:
		subject = "Your bid was not accepted"
		verdict = "declined"
	default:
		return nil
	}
	if e.AgentID == "" {
		return nil
	}

	agent, err := n.users.ByID(ctx, e.AgentID)
	if err != nil {
		return fmt.Errorf("looking up agent %s: %w", e.AgentID, err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour bid on listing %s was %s.\n\n%s/api/listings/%s\n\nThe %s Team\n",
		agent.Name, e.ListingID, verdict, n.baseURL, e.ListingID, brand,
	)
	if err := n.sender.Send(ctx, Message{To: agent.Email, ToName: agent.Name, Subject: subject, Text: body}); err != nil {
		return fmt.Errorf("notifying agent %s: %w", e.AgentID, err)
	}

	slog.Info("notified agent", "type", e.Type, "listing_id", e.ListingID, "agent_id", e.AgentID)
	return nil
}
