package listing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/validate"
)

var (
	landlord = auth.Principal{ID: "landlord-1", Role: auth.RoleLandlord}
	agentA   = auth.Principal{ID: "agent-a", Role: auth.RoleAgent}
	agentB   = auth.Principal{ID: "agent-b", Role: auth.RoleAgent}
	tenant   = auth.Principal{ID: "tenant-1", Role: auth.RoleTenant}
)

func intPtr(v int) *int { return &v }

func validInput() Input {
	return Input{
		Title:                     "Two bedroom flat",
		Purpose:                   "For Rent",
		State:                     "Lagos",
		Locality:                  "Ikeja",
		Area:                      "GRA",
		StreetEstateNeighbourhood: "Oba Akran Avenue",
		PropertyType:              "Flat",
		Bedrooms:                  intPtr(2),
		Bathrooms:                 intPtr(2),
		RentAmount:                NewAmount(750000),
		PaymentFrequency:          PaymentYearly,
		Availability:              "yes",
		Description:               "Spacious flat close to the airport.",
	}
}

func invitingInput() Input {
	in := validInput()
	in.InviteAgentToBid = true
	in.AgentInviteDetails = &InviteDetailsInput{
		CommissionRate:         ParseAmount("10%"),
		AdditionalRequirements: "Must know Ikeja well",
	}
	return in
}

func creatorOf(p auth.Principal) Creator {
	return Creator{ID: p.ID, Role: p.Role}
}

func validationErrors(t *testing.T, err error) []string {
	t.Helper()
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *validate.Error", err)
	}
	return verr.Errors
}

func containsMessage(msgs []string, want string) bool {
	for _, m := range msgs {
		if strings.Contains(m, want) {
			return true
		}
	}
	return false
}

func TestNewDefaults(t *testing.T) {
	l, err := New(validInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if l.ID == "" {
		t.Error("expected generated ID")
	}
	if l.Status != StatusActive {
		t.Errorf("status = %q, want active", l.Status)
	}
	if !l.ExpiresAt.Equal(testNow.Add(DefaultLifetime)) {
		t.Errorf("expiresAt = %v, want createdAt + 30 days", l.ExpiresAt)
	}
	if l.Version != 1 {
		t.Errorf("version = %d, want 1", l.Version)
	}
	if l.AgentBids == nil || l.Images == nil || l.VideoLinks == nil || l.Facilities == nil {
		t.Error("expected empty, non-nil collections")
	}
	if l.InviteAgentToBid || l.AgentInviteDetails != nil {
		t.Error("listing should not invite agents by default")
	}
}

func TestNewInviteDetails(t *testing.T) {
	tests := []struct {
		name        string
		creator     auth.Principal
		details     *InviteDetailsInput
		wantInvite  bool
		wantType    AgentType
		wantRate    *float64
		wantErrText string
	}{
		{
			name:       "landlord invite with defaults",
			creator:    landlord,
			details:    &InviteDetailsInput{},
			wantInvite: true,
			wantType:   AgentAny,
		},
		{
			name:       "commission string is coerced",
			creator:    landlord,
			details:    &InviteDetailsInput{CommissionRate: ParseAmount("7.5%"), PreferredAgentType: AgentLocal},
			wantInvite: true,
			wantType:   AgentLocal,
			wantRate:   func() *float64 { v := 7.5; return &v }(),
		},
		{
			name:       "zero commission is dropped",
			creator:    landlord,
			details:    &InviteDetailsInput{CommissionRate: ParseAmount("0")},
			wantInvite: true,
			wantType:   AgentAny,
		},
		{
			name:       "agent listings never invite",
			creator:    agentA,
			details:    &InviteDetailsInput{PreferredAgentType: AgentPremium},
			wantInvite: false,
		},
		{
			name:        "invite without details fails",
			creator:     landlord,
			details:     nil,
			wantErrText: "agentInviteDetails is required",
		},
		{
			name:        "unknown agent type fails",
			creator:     landlord,
			details:     &InviteDetailsInput{PreferredAgentType: "famous"},
			wantErrText: "preferredAgentType must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.InviteAgentToBid = true
			in.AgentInviteDetails = tt.details

			l, err := New(in, creatorOf(tt.creator), testNow)
			if tt.wantErrText != "" {
				if !containsMessage(validationErrors(t, err), tt.wantErrText) {
					t.Errorf("errors = %v, want one containing %q", err, tt.wantErrText)
				}
				return
			}
			if err != nil {
				t.Fatalf("new: %v", err)
			}

			if l.InviteAgentToBid != tt.wantInvite {
				t.Errorf("inviteAgentToBid = %v, want %v", l.InviteAgentToBid, tt.wantInvite)
			}
			if !tt.wantInvite {
				if l.AgentInviteDetails != nil {
					t.Errorf("details = %+v, want nil", l.AgentInviteDetails)
				}
				return
			}
			d := l.AgentInviteDetails
			if d == nil {
				t.Fatal("expected invite details")
			}
			if d.PreferredAgentType != tt.wantType {
				t.Errorf("preferredAgentType = %q, want %q", d.PreferredAgentType, tt.wantType)
			}
			switch {
			case tt.wantRate == nil && d.CommissionRate != nil:
				t.Errorf("commissionRate = %v, want unset", *d.CommissionRate)
			case tt.wantRate != nil && (d.CommissionRate == nil || *d.CommissionRate != *tt.wantRate):
				t.Errorf("commissionRate = %v, want %v", d.CommissionRate, *tt.wantRate)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		want   string
	}{
		{"missing title", func(in *Input) { in.Title = "  " }, "title is required"},
		{"bad purpose", func(in *Input) { in.Purpose = "For Sale" }, "purpose must be one of"},
		{"missing rent", func(in *Input) { in.RentAmount = Amount{} }, "rentAmount is required"},
		{"unparseable rent", func(in *Input) { in.RentAmount = ParseAmount("call me") }, "rentAmount must be a number"},
		{"zero rent", func(in *Input) { in.RentAmount = NewAmount(0) }, "rentAmount must be greater than 0"},
		{"too many bedrooms", func(in *Input) { in.Bedrooms = intPtr(21) }, "bedrooms must be between 0 and 20"},
		{"too many kitchens", func(in *Input) { in.Kitchens = intPtr(11) }, "kitchens must be between 0 and 10"},
		{"tiny property", func(in *Input) { v := 0.5; in.PropertySize = &v }, "propertySize must be between 1 and 10000"},
		{"bad frequency", func(in *Input) { in.PaymentFrequency = "weekly" }, "paymentFrequency must be one of"},
		{"bad availability", func(in *Input) { in.Availability = "maybe" }, "availability must be one of"},
		{"image without url", func(in *Input) { in.Images = []Photo{{IsCover: true}} }, "images[0].url is required"},
		{"video not http", func(in *Input) { in.VideoLinks = []VideoLink{{URL: "ftp://example.com/v"}} }, "videoLinks[0].url must be a valid"},
		{"video bad platform", func(in *Input) {
			in.VideoLinks = []VideoLink{{URL: "https://youtu.be/x", Platform: "myspace"}}
		}, "videoLinks[0].platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			_, err := New(in, creatorOf(landlord), testNow)
			msgs := validationErrors(t, err)
			if !containsMessage(msgs, tt.want) {
				t.Errorf("errors = %v, want one containing %q", msgs, tt.want)
			}
		})
	}
}

func TestNewMissingRentReportedOnce(t *testing.T) {
	in := validInput()
	in.RentAmount = Amount{}
	_, err := New(in, creatorOf(landlord), testNow)
	msgs := validationErrors(t, err)
	if len(msgs) != 1 {
		t.Errorf("errors = %v, want exactly one", msgs)
	}
}

func TestNewDetectsVideoPlatform(t *testing.T) {
	in := validInput()
	in.VideoLinks = []VideoLink{{URL: "https://www.youtube.com/watch?v=abc", Title: "Tour"}}
	l, err := New(in, creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.VideoLinks[0].Platform != "youtube" {
		t.Errorf("platform = %q, want youtube", l.VideoLinks[0].Platform)
	}
}

func TestApply(t *testing.T) {
	l, err := New(invitingInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.AgentInviteDetails.PreferredAgentType = AgentExperienced

	title := "Renovated flat"
	rent := ParseAmount("₦900,000")
	later := testNow.Add(time.Hour)
	patch := Patch{
		Title:              &title,
		RentAmount:         &rent,
		AgentInviteDetails: &InviteDetailsInput{AdditionalRequirements: "Weekend viewings"},
	}
	if err := l.Apply(patch, later); err != nil {
		t.Fatalf("apply: %v", err)
	}
	Normalize(l)
	if err := l.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if l.Title != title {
		t.Errorf("title = %q, want %q", l.Title, title)
	}
	if l.RentAmount != 900000 {
		t.Errorf("rentAmount = %v, want 900000", l.RentAmount)
	}
	if l.AgentInviteDetails.PreferredAgentType != AgentExperienced {
		t.Errorf("preferredAgentType = %q, want existing value kept", l.AgentInviteDetails.PreferredAgentType)
	}
	if l.AgentInviteDetails.AdditionalRequirements != "Weekend viewings" {
		t.Errorf("additionalRequirements = %q", l.AgentInviteDetails.AdditionalRequirements)
	}
	if l.Locality != "Ikeja" {
		t.Errorf("untouched field changed: locality = %q", l.Locality)
	}
	if !l.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", l.UpdatedAt, later)
	}
}

func TestApplyInvalidRent(t *testing.T) {
	l, err := New(validInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rent := ParseAmount("negotiable")
	err = l.Apply(Patch{RentAmount: &rent}, testNow)
	if !containsMessage(validationErrors(t, err), "rentAmount must be a number") {
		t.Errorf("err = %v", err)
	}
	if l.RentAmount != 750000 {
		t.Errorf("rentAmount = %v, want unchanged", l.RentAmount)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*Listing)
		wantInvite bool
		wantDetail bool
		wantAgent  bool
	}{
		{
			name:       "landlord inviting keeps details",
			setup:      func(l *Listing) {},
			wantInvite: true,
			wantDetail: true,
		},
		{
			name:  "agent creator cannot invite",
			setup: func(l *Listing) { l.Creator.Role = auth.RoleAgent },
		},
		{
			name:  "not inviting drops details",
			setup: func(l *Listing) { l.InviteAgentToBid = false },
		},
		{
			name: "selected agent closes bidding",
			setup: func(l *Listing) {
				b, _ := l.AgentBids.Submit("agent-a", 5, "a", "", testNow)
				_, _ = l.AgentBids.Accept(b.ID)
				l.SelectedAgent = &SelectedAgent{AgentID: "agent-a", Commission: 5, SelectedAt: testNow}
			},
			wantAgent: true,
		},
		{
			name: "selection without accepted bid is cleared",
			setup: func(l *Listing) {
				l.SelectedAgent = &SelectedAgent{AgentID: "ghost"}
			},
			wantInvite: true,
			wantDetail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(invitingInput(), creatorOf(landlord), testNow)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			tt.setup(l)
			Normalize(l)

			if l.InviteAgentToBid != tt.wantInvite {
				t.Errorf("inviteAgentToBid = %v, want %v", l.InviteAgentToBid, tt.wantInvite)
			}
			if (l.AgentInviteDetails != nil) != tt.wantDetail {
				t.Errorf("details present = %v, want %v", l.AgentInviteDetails != nil, tt.wantDetail)
			}
			if (l.SelectedAgent != nil) != tt.wantAgent {
				t.Errorf("selectedAgent present = %v, want %v", l.SelectedAgent != nil, tt.wantAgent)
			}
		})
	}
}

func TestSubmitBidRules(t *testing.T) {
	bid := BidInput{ProposedCommission: NewAmount(5), CoverLetter: "I know the area"}

	tests := []struct {
		name    string
		setup   func(*Listing)
		who     auth.Principal
		in      BidInput
		wantErr error
		wantMsg string
	}{
		{name: "agent can bid", who: agentA, in: bid},
		{name: "landlord cannot bid", who: landlord, in: bid, wantErr: ErrForbidden},
		{name: "tenant cannot bid", who: tenant, in: bid, wantErr: ErrForbidden},
		{
			name:    "not inviting",
			setup:   func(l *Listing) { l.InviteAgentToBid = false },
			who:     agentA,
			in:      bid,
			wantErr: ErrNotAcceptingBids,
		},
		{
			name:    "not active",
			setup:   func(l *Listing) { l.Status = StatusRented },
			who:     agentA,
			in:      bid,
			wantErr: ErrNotActive,
		},
		{
			name:    "missing cover letter",
			who:     agentA,
			in:      BidInput{ProposedCommission: NewAmount(5)},
			wantMsg: "coverLetter is required",
		},
		{
			name:    "negative commission",
			who:     agentA,
			in:      BidInput{ProposedCommission: NewAmount(-1), CoverLetter: "x"},
			wantMsg: "proposedCommission must be at least 0",
		},
		{
			name:    "long cover letter",
			who:     agentA,
			in:      BidInput{ProposedCommission: NewAmount(1), CoverLetter: strings.Repeat("a", 1001)},
			wantMsg: "coverLetter must be at most 1000 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(invitingInput(), creatorOf(landlord), testNow)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if tt.setup != nil {
				tt.setup(l)
			}

			b, err := l.SubmitBid(tt.who, tt.in, testNow)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if !containsMessage(validationErrors(t, err), tt.wantMsg) {
					t.Errorf("err = %v, want message %q", err, tt.wantMsg)
				}
			default:
				if err != nil {
					t.Fatalf("submit: %v", err)
				}
				if b.AgentID != tt.who.ID || len(l.AgentBids) != 1 {
					t.Errorf("bid not recorded: %+v", l.AgentBids)
				}
				return
			}
			if len(l.AgentBids) != 0 {
				t.Errorf("failed submit recorded a bid: %+v", l.AgentBids)
			}
		})
	}
}

func TestAcceptBidSelectsAgent(t *testing.T) {
	l, err := New(invitingInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a, err := l.SubmitBid(agentA, BidInput{ProposedCommission: NewAmount(8), CoverLetter: "a"}, testNow)
	if err != nil {
		t.Fatalf("bid a: %v", err)
	}
	b, err := l.SubmitBid(agentB, BidInput{ProposedCommission: NewAmount(6), CoverLetter: "b"}, testNow)
	if err != nil {
		t.Fatalf("bid b: %v", err)
	}

	if _, err := l.AcceptBid(a.ID, agentA, testNow); !errors.Is(err, ErrForbidden) {
		t.Errorf("agent accept err = %v, want ErrForbidden", err)
	}
	other := auth.Principal{ID: "landlord-2", Role: auth.RoleLandlord}
	if _, err := l.AcceptBid(a.ID, other, testNow); !errors.Is(err, ErrForbidden) {
		t.Errorf("other landlord accept err = %v, want ErrForbidden", err)
	}
	if _, err := l.AcceptBid("missing", landlord, testNow); !errors.Is(err, ErrBidNotFound) {
		t.Errorf("missing bid err = %v, want ErrBidNotFound", err)
	}

	if _, err := l.AcceptBid(a.ID, landlord, testNow); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if l.SelectedAgent == nil || l.SelectedAgent.AgentID != agentA.ID || l.SelectedAgent.Commission != 8 {
		t.Errorf("selectedAgent = %+v", l.SelectedAgent)
	}
	if l.InviteAgentToBid || l.AgentInviteDetails != nil {
		t.Error("accepting a bid should close bidding")
	}
	if l.AgentBids[1].Status != BidRejected {
		t.Errorf("other bid status = %q, want rejected", l.AgentBids[1].Status)
	}

	if _, err := l.AcceptBid(b.ID, landlord, testNow); !errors.Is(err, ErrAgentAlreadySelected) {
		t.Errorf("second accept err = %v, want ErrAgentAlreadySelected", err)
	}
	if _, err := l.AcceptBid(a.ID, landlord, testNow.Add(time.Minute)); err != nil {
		t.Errorf("re-accept same bid: %v", err)
	}
	if !l.SelectedAgent.SelectedAt.Equal(testNow) {
		t.Errorf("re-accept moved selectedAt to %v", l.SelectedAgent.SelectedAt)
	}
	if _, err := l.RejectBid(a.ID, landlord, testNow); !errors.Is(err, ErrAgentAlreadySelected) {
		t.Errorf("reject accepted err = %v, want ErrAgentAlreadySelected", err)
	}
	if _, err := l.SubmitBid(auth.Principal{ID: "agent-c", Role: auth.RoleAgent},
		BidInput{ProposedCommission: NewAmount(1), CoverLetter: "late"}, testNow); !errors.Is(err, ErrNotAcceptingBids) {
		t.Errorf("late bid err = %v, want ErrNotAcceptingBids", err)
	}
}

func TestRejectBid(t *testing.T) {
	l, err := New(invitingInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a, _ := l.SubmitBid(agentA, BidInput{ProposedCommission: NewAmount(8), CoverLetter: "a"}, testNow)
	_, _ = l.SubmitBid(agentB, BidInput{ProposedCommission: NewAmount(6), CoverLetter: "b"}, testNow)

	if _, err := l.RejectBid(a.ID, landlord, testNow); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if l.AgentBids[0].Status != BidRejected || l.AgentBids[1].Status != BidPending {
		t.Errorf("statuses = %q, %q", l.AgentBids[0].Status, l.AgentBids[1].Status)
	}
	if !l.InviteAgentToBid || l.SelectedAgent != nil {
		t.Error("rejecting should not close bidding")
	}
	if _, err := l.RejectBid("missing", landlord, testNow); !errors.Is(err, ErrBidNotFound) {
		t.Errorf("missing bid err = %v, want ErrBidNotFound", err)
	}
}

func TestView(t *testing.T) {
	l, err := New(invitingInput(), creatorOf(landlord), testNow)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, _ = l.SubmitBid(agentA, BidInput{ProposedCommission: NewAmount(8), CoverLetter: "a"}, testNow)
	b, _ := l.SubmitBid(agentB, BidInput{ProposedCommission: NewAmount(6), CoverLetter: "b"}, testNow)
	_, _ = l.RejectBid(b.ID, landlord, testNow)

	v := NewView(l, testNow)
	if v.IsExpired {
		t.Error("fresh listing reported expired")
	}
	if v.ActiveBidsCount != 1 {
		t.Errorf("activeBidsCount = %d, want 1", v.ActiveBidsCount)
	}

	v = NewView(l, testNow.Add(DefaultLifetime+time.Second))
	if !v.IsExpired {
		t.Error("listing past expiresAt not reported expired")
	}
}
