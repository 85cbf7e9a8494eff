// Package listing provides the rental listing aggregate, its agent bid
// ledger, persistence and the service that authorizes and orchestrates them.
package listing

import (
	"time"

	"github.com/surekeys/rentals/internal/auth"
)

// DefaultLifetime is how long a new listing stays unexpired.
const DefaultLifetime = 30 * 24 * time.Hour

// Status is where a listing is in its lifecycle.
type Status string

const (
	StatusActive           Status = "active"
	StatusInactive         Status = "inactive"
	StatusRented           Status = "rented"
	StatusUnderNegotiation Status = "under_negotiation"
)

const (
	purposeForRent  = "For Rent"
	purposeShortLet = "Short Let"
	availabilityYes = "yes"
	availabilityNo  = "no"
)

// PaymentFrequency is how often rent is paid.
type PaymentFrequency string

const (
	PaymentMonthly   PaymentFrequency = "monthly"
	PaymentQuarterly PaymentFrequency = "quarterly"
	PaymentYearly    PaymentFrequency = "yearly"
)

// AgentType is the kind of agent a landlord would prefer to hire.
type AgentType string

const (
	AgentAny         AgentType = "any"
	AgentLocal       AgentType = "local"
	AgentExperienced AgentType = "experienced"
	AgentPremium     AgentType = "premium"
)

// Creator identifies who created a listing. It never changes.
type Creator struct {
	ID   string    `json:"id" bson:"id"`
	Role auth.Role `json:"role" bson:"role"`
}

// Photo is an uploaded listing image.
type Photo struct {
	URL       string `json:"url" bson:"url"`
	IsCover   bool   `json:"isCover" bson:"isCover"`
	StorageID string `json:"storageId,omitempty" bson:"storageId,omitempty"`
}

// VideoLink points at a walkthrough hosted on a video platform.
type VideoLink struct {
	URL      string `json:"url" bson:"url"`
	Platform string `json:"platform" bson:"platform"`
	Title    string `json:"title" bson:"title"`
}

// InviteDetails describes the terms a landlord offers bidding agents.
type InviteDetails struct {
	CommissionRate         *float64  `json:"commissionRate,omitempty" bson:"commissionRate,omitempty"`
	PreferredAgentType     AgentType `json:"preferredAgentType" bson:"preferredAgentType"`
	AdditionalRequirements string    `json:"additionalRequirements" bson:"additionalRequirements"`
}

// SelectedAgent records the agent whose bid was accepted.
type SelectedAgent struct {
	AgentID    string    `json:"agentId" bson:"agentId"`
	Commission float64   `json:"commission" bson:"commission"`
	SelectedAt time.Time `json:"selectedAt" bson:"selectedAt"`
}

// Listing is a rental property advert together with its agent bids.
type Listing struct {
	ID      string  `json:"id" bson:"_id"`
	Creator Creator `json:"creator" bson:"creator"`

	Title                     string `json:"title" bson:"title"`
	Purpose                   string `json:"purpose" bson:"purpose"`
	State                     string `json:"state" bson:"state"`
	Locality                  string `json:"locality" bson:"locality"`
	Area                      string `json:"area" bson:"area"`
	StreetEstateNeighbourhood string `json:"streetEstateNeighbourhood" bson:"streetEstateNeighbourhood"`
	PropertyType              string `json:"propertyType" bson:"propertyType"`

	Bedrooms     *int     `json:"bedrooms,omitempty" bson:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty" bson:"bathrooms,omitempty"`
	Toilets      *int     `json:"toilets,omitempty" bson:"toilets,omitempty"`
	Kitchens     *int     `json:"kitchens,omitempty" bson:"kitchens,omitempty"`
	PropertySize *float64 `json:"propertySize,omitempty" bson:"propertySize,omitempty"`
	Facilities   []string `json:"facilities" bson:"facilities"`

	RentAmount              float64          `json:"rentAmount" bson:"rentAmount"`
	PaymentFrequency        PaymentFrequency `json:"paymentFrequency" bson:"paymentFrequency"`
	Availability            string           `json:"availability" bson:"availability"`
	Description             string           `json:"description" bson:"description"`
	LandlordLivesInCompound bool             `json:"landlordLivesInCompound" bson:"landlordLivesInCompound"`

	Images     []Photo     `json:"images" bson:"images"`
	PhotoNotes string      `json:"photoNotes,omitempty" bson:"photoNotes,omitempty"`
	VideoLinks []VideoLink `json:"videoLinks" bson:"videoLinks"`

	InviteAgentToBid   bool           `json:"inviteAgentToBid" bson:"inviteAgentToBid"`
	AgentInviteDetails *InviteDetails `json:"agentInviteDetails,omitempty" bson:"agentInviteDetails,omitempty"`
	AgentBids          Ledger         `json:"agentBids" bson:"agentBids"`
	SelectedAgent      *SelectedAgent `json:"selectedAgent,omitempty" bson:"selectedAgent,omitempty"`

	Status     Status    `json:"status" bson:"status"`
	Views      int64     `json:"views" bson:"views"`
	IsFeatured bool      `json:"isFeatured" bson:"isFeatured"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
	Version    int64     `json:"version" bson:"version"`
}

// IsExpired reports whether the listing is past its expiry at now.
// Expiry is only evaluated when read; nothing sweeps expired listings.
func (l *Listing) IsExpired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// View is a listing as returned to API callers, with read-time fields.
type View struct {
	*Listing
	IsExpired       bool `json:"isExpired"`
	ActiveBidsCount int  `json:"activeBidsCount"`
}

// NewView computes the read-time fields of l at now.
func NewView(l *Listing, now time.Time) View {
	return View{
		Listing:         l,
		IsExpired:       l.IsExpired(now),
		ActiveBidsCount: l.AgentBids.Pending(),
	}
}

// fillEmpty replaces nil collections so they encode as [] rather than null.
func (l *Listing) fillEmpty() {
	l.Facilities = orEmpty(l.Facilities)
	l.Images = orEmpty(l.Images)
	l.VideoLinks = orEmpty(l.VideoLinks)
	if l.AgentBids == nil {
		l.AgentBids = Ledger{}
	}
}

// clone returns a deep copy so that a failed command leaves the original untouched.
func (l *Listing) clone() *Listing {
	c := *l
	c.Facilities = append([]string{}, l.Facilities...)
	c.Images = append([]Photo{}, l.Images...)
	c.VideoLinks = append([]VideoLink{}, l.VideoLinks...)
	c.AgentBids = append(Ledger{}, l.AgentBids...)
	if l.AgentInviteDetails != nil {
		d := *l.AgentInviteDetails
		if d.CommissionRate != nil {
			rate := *d.CommissionRate
			d.CommissionRate = &rate
		}
		c.AgentInviteDetails = &d
	}
	if l.SelectedAgent != nil {
		s := *l.SelectedAgent
		c.SelectedAgent = &s
	}
	c.Bedrooms = copyInt(l.Bedrooms)
	c.Bathrooms = copyInt(l.Bathrooms)
	c.Toilets = copyInt(l.Toilets)
	c.Kitchens = copyInt(l.Kitchens)
	if l.PropertySize != nil {
		size := *l.PropertySize
		c.PropertySize = &size
	}
	return &c
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
