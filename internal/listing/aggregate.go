package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/validate"
)

// New builds a validated listing owned by creator.
func New(in Input, creator Creator, now time.Time) (*Listing, error) {
	var c validate.Collector

	rent, ok := in.RentAmount.Value()
	rentReported := true
	switch {
	case !in.RentAmount.IsSet():
		c.Addf("rentAmount is required")
	case !ok:
		c.Addf("rentAmount must be a number")
	default:
		rentReported = false
	}

	l := &Listing{
		ID:                        uuid.NewString(),
		Creator:                   creator,
		Title:                     strings.TrimSpace(in.Title),
		Purpose:                   in.Purpose,
		State:                     strings.TrimSpace(in.State),
		Locality:                  strings.TrimSpace(in.Locality),
		Area:                      strings.TrimSpace(in.Area),
		StreetEstateNeighbourhood: strings.TrimSpace(in.StreetEstateNeighbourhood),
		PropertyType:              strings.TrimSpace(in.PropertyType),
		Bedrooms:                  in.Bedrooms,
		Bathrooms:                 in.Bathrooms,
		Toilets:                   in.Toilets,
		Kitchens:                  in.Kitchens,
		PropertySize:              in.PropertySize,
		Facilities:                orEmpty(in.Facilities),
		RentAmount:                rent,
		PaymentFrequency:          in.PaymentFrequency,
		Availability:              in.Availability,
		Description:               in.Description,
		LandlordLivesInCompound:   in.LandlordLivesInCompound,
		Images:                    orEmpty(in.Images),
		PhotoNotes:                in.PhotoNotes,
		VideoLinks:                normalizeVideoLinks(in.VideoLinks),
		InviteAgentToBid:          in.InviteAgentToBid,
		AgentBids:                 Ledger{},
		Status:                    StatusActive,
		ExpiresAt:                 now.Add(DefaultLifetime),
		CreatedAt:                 now,
		UpdatedAt:                 now,
		Version:                   1,
	}
	if in.InviteAgentToBid && in.AgentInviteDetails != nil {
		l.AgentInviteDetails = normalizeInviteDetails(in.AgentInviteDetails, AgentAny)
	}

	Normalize(l)
	l.check(&c, !rentReported)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Apply copies the touched fields of p onto l, coercing amounts and
// normalizing invitation details the same way New does. It does not
// re-run Normalize; callers do that once the patch is in place.
func (l *Listing) Apply(p Patch, now time.Time) error {
	var c validate.Collector

	setString(&l.Title, p.Title)
	setString(&l.Purpose, p.Purpose)
	setString(&l.State, p.State)
	setString(&l.Locality, p.Locality)
	setString(&l.Area, p.Area)
	setString(&l.StreetEstateNeighbourhood, p.StreetEstateNeighbourhood)
	setString(&l.PropertyType, p.PropertyType)
	setString(&l.Availability, p.Availability)
	setString(&l.Description, p.Description)
	setString(&l.PhotoNotes, p.PhotoNotes)

	if p.Bedrooms != nil {
		l.Bedrooms = copyInt(p.Bedrooms)
	}
	if p.Bathrooms != nil {
		l.Bathrooms = copyInt(p.Bathrooms)
	}
	if p.Toilets != nil {
		l.Toilets = copyInt(p.Toilets)
	}
	if p.Kitchens != nil {
		l.Kitchens = copyInt(p.Kitchens)
	}
	if p.PropertySize != nil {
		size := *p.PropertySize
		l.PropertySize = &size
	}
	if p.Facilities != nil {
		l.Facilities = orEmpty(*p.Facilities)
	}
	if p.RentAmount != nil && p.RentAmount.IsSet() {
		if v, ok := p.RentAmount.Value(); ok {
			l.RentAmount = v
		} else {
			c.Addf("rentAmount must be a number")
		}
	}
	if p.PaymentFrequency != nil {
		l.PaymentFrequency = *p.PaymentFrequency
	}
	if p.LandlordLivesInCompound != nil {
		l.LandlordLivesInCompound = *p.LandlordLivesInCompound
	}
	if p.Images != nil {
		l.Images = orEmpty(*p.Images)
	}
	if p.VideoLinks != nil {
		l.VideoLinks = normalizeVideoLinks(*p.VideoLinks)
	}
	if p.InviteAgentToBid != nil {
		l.InviteAgentToBid = *p.InviteAgentToBid
	}
	if p.AgentInviteDetails != nil {
		var fallback AgentType
		if l.AgentInviteDetails != nil {
			fallback = l.AgentInviteDetails.PreferredAgentType
		}
		l.AgentInviteDetails = normalizeInviteDetails(p.AgentInviteDetails, fallback)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.IsFeatured != nil {
		l.IsFeatured = *p.IsFeatured
	}
	if p.ExpiresAt != nil {
		l.ExpiresAt = *p.ExpiresAt
	}

	l.UpdatedAt = now
	return c.Err()
}

// Normalize enforces the invitation and selection invariants:
// only landlord listings may invite agents, bidding closes for good once
// an agent is selected, invitation details exist only while inviting,
// and a selected agent exists only alongside an accepted bid.
func Normalize(l *Listing) {
	if l.Creator.Role != auth.RoleLandlord {
		l.InviteAgentToBid = false
	}
	if _, ok := l.AgentBids.Accepted(); !ok {
		l.SelectedAgent = nil
	}
	if l.SelectedAgent != nil {
		l.InviteAgentToBid = false
	}
	if !l.InviteAgentToBid {
		l.AgentInviteDetails = nil
	}
}

// Validate checks every field of l.
func (l *Listing) Validate() error {
	var c validate.Collector
	l.check(&c, true)
	return c.Err()
}

func (l *Listing) check(c *validate.Collector, checkRent bool) {
	c.Required("creator.id", l.Creator.ID)
	c.OneOf("creator.role", string(l.Creator.Role), string(auth.RoleLandlord), string(auth.RoleAgent))

	c.Required("title", l.Title)
	c.Required("purpose", l.Purpose)
	c.OneOf("purpose", l.Purpose, purposeForRent, purposeShortLet)
	c.Required("state", l.State)
	c.Required("locality", l.Locality)
	c.Required("area", l.Area)
	c.Required("streetEstateNeighbourhood", l.StreetEstateNeighbourhood)
	c.Required("propertyType", l.PropertyType)

	c.IntRange("bedrooms", l.Bedrooms, 0, 20)
	c.IntRange("bathrooms", l.Bathrooms, 0, 20)
	c.IntRange("toilets", l.Toilets, 0, 20)
	c.IntRange("kitchens", l.Kitchens, 0, 10)
	c.FloatRange("propertySize", l.PropertySize, 1, 10000)

	if checkRent && l.RentAmount <= 0 {
		c.Addf("rentAmount must be greater than 0")
	}
	c.Required("paymentFrequency", string(l.PaymentFrequency))
	c.OneOf("paymentFrequency", string(l.PaymentFrequency),
		string(PaymentMonthly), string(PaymentQuarterly), string(PaymentYearly))
	c.Required("availability", l.Availability)
	c.OneOf("availability", l.Availability, availabilityYes, availabilityNo)
	c.Required("description", l.Description)

	for i, p := range l.Images {
		c.Required(fmt.Sprintf("images[%d].url", i), p.URL)
	}
	for i, v := range l.VideoLinks {
		field := fmt.Sprintf("videoLinks[%d]", i)
		switch {
		case strings.TrimSpace(v.URL) == "":
			c.Addf("%s.url is required", field)
		case !isHTTPURL(v.URL):
			c.Addf("%s.url must be a valid http or https URL", field)
		}
		if !knownVideoPlatform(v.Platform) {
			c.Addf("%s.platform is not a supported platform", field)
		}
	}

	if l.InviteAgentToBid && l.AgentInviteDetails == nil {
		c.Addf("agentInviteDetails is required when inviteAgentToBid is true")
	}
	if d := l.AgentInviteDetails; d != nil {
		c.OneOf("agentInviteDetails.preferredAgentType", string(d.PreferredAgentType),
			string(AgentAny), string(AgentLocal), string(AgentExperienced), string(AgentPremium))
		c.MaxLen("agentInviteDetails.additionalRequirements", d.AdditionalRequirements, 500)
		c.FloatRange("agentInviteDetails.commissionRate", d.CommissionRate, 0, 100)
	}

	c.OneOf("status", string(l.Status),
		string(StatusActive), string(StatusInactive), string(StatusRented), string(StatusUnderNegotiation))
	c.Required("status", string(l.Status))
}

// SubmitBid records an agent's bid. Only agents may bid, and only on
// active listings whose landlord is inviting bids.
func (l *Listing) SubmitBid(p auth.Principal, in BidInput, now time.Time) (Bid, error) {
	if err := authorize(p, l, ActionSubmitBid); err != nil {
		return Bid{}, err
	}
	if !l.InviteAgentToBid {
		return Bid{}, ErrNotAcceptingBids
	}
	if l.Status != StatusActive {
		return Bid{}, ErrNotActive
	}

	var c validate.Collector
	commission, ok := in.ProposedCommission.Value()
	switch {
	case !in.ProposedCommission.IsSet():
		c.Addf("proposedCommission is required")
	case !ok:
		c.Addf("proposedCommission must be a number")
	case commission < 0:
		c.Addf("proposedCommission must be at least 0")
	}
	c.Required("coverLetter", in.CoverLetter)
	c.MaxLen("coverLetter", in.CoverLetter, 1000)
	c.MaxLen("experience", in.Experience, 500)
	if err := c.Err(); err != nil {
		return Bid{}, err
	}

	b, err := l.AgentBids.Submit(p.ID, commission, in.CoverLetter, in.Experience, now)
	if err != nil {
		return Bid{}, err
	}
	l.UpdatedAt = now
	return b, nil
}

// AcceptBid selects bidID's agent, rejects every other bid and closes
// bidding. Once an agent is selected only the same bid may be accepted
// again.
func (l *Listing) AcceptBid(bidID string, p auth.Principal, now time.Time) (Bid, error) {
	if err := authorize(p, l, ActionAcceptBid); err != nil {
		return Bid{}, err
	}
	if l.AgentBids.index(bidID) < 0 {
		return Bid{}, ErrBidNotFound
	}
	if accepted, ok := l.AgentBids.Accepted(); ok && accepted.ID != bidID {
		return Bid{}, ErrAgentAlreadySelected
	}

	b, err := l.AgentBids.Accept(bidID)
	if err != nil {
		return Bid{}, err
	}

	selectedAt := now
	if l.SelectedAgent != nil && l.SelectedAgent.AgentID == b.AgentID {
		selectedAt = l.SelectedAgent.SelectedAt
	}
	l.SelectedAgent = &SelectedAgent{
		AgentID:    b.AgentID,
		Commission: b.ProposedCommission,
		SelectedAt: selectedAt,
	}
	l.InviteAgentToBid = false
	Normalize(l)
	l.UpdatedAt = now
	return b, nil
}

// RejectBid rejects bidID without touching other bids. The accepted bid
// cannot be rejected.
func (l *Listing) RejectBid(bidID string, p auth.Principal, now time.Time) (Bid, error) {
	if err := authorize(p, l, ActionRejectBid); err != nil {
		return Bid{}, err
	}
	if accepted, ok := l.AgentBids.Accepted(); ok && accepted.ID == bidID {
		return Bid{}, ErrAgentAlreadySelected
	}

	b, err := l.AgentBids.Reject(bidID)
	if err != nil {
		return Bid{}, err
	}
	l.UpdatedAt = now
	return b, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
