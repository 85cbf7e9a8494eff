package listing

import (
	"time"

	"github.com/google/uuid"
)

// BidStatus is the state of an agent bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// Bid is an agent's commission proposal on a listing.
// Bids only exist inside their listing's Ledger.
type Bid struct {
	ID                 string    `json:"id" bson:"id"`
	AgentID            string    `json:"agentId" bson:"agentId"`
	ProposedCommission float64   `json:"proposedCommission" bson:"proposedCommission"`
	CoverLetter        string    `json:"coverLetter" bson:"coverLetter"`
	Experience         string    `json:"experience,omitempty" bson:"experience,omitempty"`
	Status             BidStatus `json:"status" bson:"status"`
	SubmittedAt        time.Time `json:"submittedAt" bson:"submittedAt"`
}

// Ledger is the ordered set of bids on one listing.
// Bids keep insertion order; status changes never reorder them.
type Ledger []Bid

// Submit appends a pending bid for agentID.
// An agent may hold at most one bid per ledger.
func (l *Ledger) Submit(agentID string, commission float64, coverLetter, experience string, now time.Time) (Bid, error) {
	if l.ByAgent(agentID) >= 0 {
		return Bid{}, ErrDuplicateBid
	}

	b := Bid{
		ID:                 uuid.NewString(),
		AgentID:            agentID,
		ProposedCommission: commission,
		CoverLetter:        coverLetter,
		Experience:         experience,
		Status:             BidPending,
		SubmittedAt:        now,
	}
	*l = append(*l, b)
	return b, nil
}

// Accept marks bidID accepted and every other bid rejected, whatever
// their previous status.
func (l Ledger) Accept(bidID string) (Bid, error) {
	i := l.index(bidID)
	if i < 0 {
		return Bid{}, ErrBidNotFound
	}

	for j := range l {
		if j == i {
			l[j].Status = BidAccepted
		} else {
			l[j].Status = BidRejected
		}
	}
	return l[i], nil
}

// Reject marks bidID rejected and leaves the others alone.
func (l Ledger) Reject(bidID string) (Bid, error) {
	i := l.index(bidID)
	if i < 0 {
		return Bid{}, ErrBidNotFound
	}
	l[i].Status = BidRejected
	return l[i], nil
}

// Accepted returns the accepted bid, if any.
func (l Ledger) Accepted() (Bid, bool) {
	for _, b := range l {
		if b.Status == BidAccepted {
			return b, true
		}
	}
	return Bid{}, false
}

// ByAgent returns the index of agentID's bid, or -1.
func (l Ledger) ByAgent(agentID string) int {
	for i, b := range l {
		if b.AgentID == agentID {
			return i
		}
	}
	return -1
}

// Pending counts bids still awaiting a decision.
func (l Ledger) Pending() int {
	n := 0
	for _, b := range l {
		if b.Status == BidPending {
			n++
		}
	}
	return n
}

// Changed returns the bids whose status differs from before, which maps
// bid IDs to earlier statuses. Bids missing from before count as changed.
func (l Ledger) Changed(before map[string]BidStatus) []Bid {
	var out []Bid
	for _, b := range l {
		if prev, ok := before[b.ID]; !ok || prev != b.Status {
			out = append(out, b)
		}
	}
	return out
}

func (l Ledger) statuses() map[string]BidStatus {
	m := make(map[string]BidStatus, len(l))
	for _, b := range l {
		m[b.ID] = b.Status
	}
	return m
}

func (l Ledger) index(bidID string) int {
	for i, b := range l {
		if b.ID == bidID {
			return i
		}
	}
	return -1
}
