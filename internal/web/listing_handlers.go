package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/surekeys/rentals/internal/listing"
	"github.com/surekeys/rentals/internal/validate"
)

// listingPage is a search result as returned to clients.
type listingPage struct {
	Listings   []listing.View     `json:"listings"`
	Pagination listing.Pagination `json:"pagination"`
}

// bidsSummary is the listing summary returned alongside its bids.
type bidsSummary struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	InviteAgentToBid   bool                   `json:"inviteAgentToBid"`
	AgentInviteDetails *listing.InviteDetails `json:"agentInviteDetails,omitempty"`
}

type bidsResponse struct {
	Listing bidsSummary   `json:"listing"`
	Bids    []listing.Bid `json:"bids"`
}

func (s *Server) view(l *listing.Listing) listing.View {
	return listing.NewView(l, s.listings.Now())
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var in listing.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	l, err := s.listings.Create(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Listing created successfully", s.view(l))
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := s.listings.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]listing.View, 0, len(page.Listings))
	for _, l := range page.Listings {
		views = append(views, s.view(l))
	}
	writeData(w, http.StatusOK, "Listings retrieved successfully", listingPage{
		Listings:   views,
		Pagination: page.Pagination,
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	l, err := s.listings.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Listing retrieved successfully", s.view(l))
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	var patch listing.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	l, err := s.listings.Update(r.Context(), principal(r), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Listing updated successfully", s.view(l))
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := s.listings.Delete(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Listing deleted successfully")
}

func (s *Server) handleSubmitBid(w http.ResponseWriter, r *http.Request) {
	var in listing.BidInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	l, _, err := s.listings.SubmitBid(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Bid submitted successfully", s.view(l))
}

func (s *Server) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, err := s.listings.AcceptBid(r.Context(), principal(r), vars["id"], vars["bidId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Bid accepted successfully", s.view(l))
}

func (s *Server) handleRejectBid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, err := s.listings.RejectBid(r.Context(), principal(r), vars["id"], vars["bidId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Bid rejected successfully", s.view(l))
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	l, err := s.listings.Bids(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	bids := l.AgentBids
	if bids == nil {
		bids = listing.Ledger{}
	}
	writeData(w, http.StatusOK, "Bids retrieved successfully", bidsResponse{
		Listing: bidsSummary{
			ID:                 l.ID,
			Title:              l.Title,
			InviteAgentToBid:   l.InviteAgentToBid,
			AgentInviteDetails: l.AgentInviteDetails,
		},
		Bids: bids,
	})
}

// parseQuery reads the search filters from the URL. Blank parameters are
// ignored; malformed numbers are validation errors.
func parseQuery(r *http.Request) (listing.Query, error) {
	v := r.URL.Query()
	var c validate.Collector

	q := listing.Query{
		State:        strings.TrimSpace(v.Get("state")),
		Locality:     strings.TrimSpace(v.Get("locality")),
		Area:         strings.TrimSpace(v.Get("area")),
		PropertyType: strings.TrimSpace(v.Get("propertyType")),
		Sort:         strings.TrimSpace(v.Get("sort")),
	}

	intParam := func(name string) *int {
		raw := strings.TrimSpace(v.Get(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.Addf("%s must be an integer", name)
			return nil
		}
		return &n
	}
	floatParam := func(name string) *float64 {
		raw := strings.TrimSpace(v.Get(name))
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.Addf("%s must be a number", name)
			return nil
		}
		return &f
	}

	q.Bedrooms = intParam("bedrooms")
	q.Bathrooms = intParam("bathrooms")
	q.MinRent = floatParam("minRent")
	q.MaxRent = floatParam("maxRent")

	if raw := strings.TrimSpace(v.Get("inviteAgentToBid")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			c.Addf("inviteAgentToBid must be true or false")
		} else {
			q.InviteAgentToBid = &b
		}
	}

	if p := intParam("page"); p != nil {
		q.Page = *p
	}
	size := intParam("limit")
	if size == nil {
		size = intParam("pageSize")
	}
	if size != nil {
		q.PageSize = *size
	}

	if err := c.Err(); err != nil {
		return listing.Query{}, err
	}
	return q, nil
}
