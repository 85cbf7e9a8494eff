package listing

import "time"

// Input is the payload for creating a listing.
type Input struct {
	Title                     string              `json:"title"`
	Purpose                   string              `json:"purpose"`
	State                     string              `json:"state"`
	Locality                  string              `json:"locality"`
	Area                      string              `json:"area"`
	StreetEstateNeighbourhood string              `json:"streetEstateNeighbourhood"`
	PropertyType              string              `json:"propertyType"`
	Bedrooms                  *int                `json:"bedrooms"`
	Bathrooms                 *int                `json:"bathrooms"`
	Toilets                   *int                `json:"toilets"`
	Kitchens                  *int                `json:"kitchens"`
	PropertySize              *float64            `json:"propertySize"`
	Facilities                []string            `json:"facilities"`
	RentAmount                Amount              `json:"rentAmount"`
	PaymentFrequency          PaymentFrequency    `json:"paymentFrequency"`
	Availability              string              `json:"availability"`
	Description               string              `json:"description"`
	LandlordLivesInCompound   bool                `json:"landlordLivesInCompound"`
	Images                    []Photo             `json:"images"`
	PhotoNotes                string              `json:"photoNotes"`
	VideoLinks                []VideoLink         `json:"videoLinks"`
	InviteAgentToBid          bool                `json:"inviteAgentToBid"`
	AgentInviteDetails        *InviteDetailsInput `json:"agentInviteDetails"`
}

// InviteDetailsInput is the raw agent invitation payload.
type InviteDetailsInput struct {
	CommissionRate         Amount    `json:"commissionRate"`
	PreferredAgentType     AgentType `json:"preferredAgentType"`
	AdditionalRequirements string    `json:"additionalRequirements"`
}

// Patch is a partial update. Nil fields are left untouched; creator,
// bids, selection, views and timestamps cannot be patched.
type Patch struct {
	Title                     *string             `json:"title"`
	Purpose                   *string             `json:"purpose"`
	State                     *string             `json:"state"`
	Locality                  *string             `json:"locality"`
	Area                      *string             `json:"area"`
	StreetEstateNeighbourhood *string             `json:"streetEstateNeighbourhood"`
	PropertyType              *string             `json:"propertyType"`
	Bedrooms                  *int                `json:"bedrooms"`
	Bathrooms                 *int                `json:"bathrooms"`
	Toilets                   *int                `json:"toilets"`
	Kitchens                  *int                `json:"kitchens"`
	PropertySize              *float64            `json:"propertySize"`
	Facilities                *[]string           `json:"facilities"`
	RentAmount                *Amount             `json:"rentAmount"`
	PaymentFrequency          *PaymentFrequency   `json:"paymentFrequency"`
	Availability              *string             `json:"availability"`
	Description               *string             `json:"description"`
	LandlordLivesInCompound   *bool               `json:"landlordLivesInCompound"`
	Images                    *[]Photo            `json:"images"`
	PhotoNotes                *string             `json:"photoNotes"`
	VideoLinks                *[]VideoLink        `json:"videoLinks"`
	InviteAgentToBid          *bool               `json:"inviteAgentToBid"`
	AgentInviteDetails        *InviteDetailsInput `json:"agentInviteDetails"`
	Status                    *Status             `json:"status"`
	IsFeatured                *bool               `json:"isFeatured"`
	ExpiresAt                 *time.Time          `json:"expiresAt"`
}

// BidInput is an agent's bid payload.
type BidInput struct {
	ProposedCommission Amount `json:"proposedCommission"`
	CoverLetter        string `json:"coverLetter"`
	Experience         string `json:"experience"`
}

// normalizeInviteDetails turns the raw payload into stored details.
// fallbackType is used when no preferred agent type is supplied.
func normalizeInviteDetails(in *InviteDetailsInput, fallbackType AgentType) *InviteDetails {
	d := &InviteDetails{
		PreferredAgentType:     in.PreferredAgentType,
		AdditionalRequirements: in.AdditionalRequirements,
		CommissionRate:         in.CommissionRate.Positive(),
	}
	if d.PreferredAgentType == "" {
		d.PreferredAgentType = fallbackType
	}
	if d.PreferredAgentType == "" {
		d.PreferredAgentType = AgentAny
	}
	return d
}

// normalizeVideoLinks fills in missing platforms.
func normalizeVideoLinks(links []VideoLink) []VideoLink {
	out := make([]VideoLink, len(links))
	for i, v := range links {
		if v.Platform == "" {
			v.Platform = DetectVideoPlatform(v.URL)
		}
		out[i] = v
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
