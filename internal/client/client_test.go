package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/surekeys/rentals/internal/listing"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, code int, msg string, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]interface{}{"message": msg}
	if data != nil {
		body["data"] = data
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestListListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings" {
			t.Errorf("path = %q, want /api/listings", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("state") != "Lagos" || q.Get("minRent") != "50000" || q.Get("limit") != "5" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		if q.Has("bedrooms") || q.Has("inviteAgentToBid") {
			t.Errorf("zero options should be omitted: %q", r.URL.RawQuery)
		}
		writeEnvelope(t, w, http.StatusOK, "Listings retrieved successfully", map[string]interface{}{
			"listings":   []map[string]interface{}{{"id": "l1", "title": "Flat", "rentAmount": 60000, "activeBidsCount": 2}},
			"pagination": map[string]interface{}{"currentPage": 1, "totalPages": 1, "totalCount": 1},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	page, err := c.ListListings(ListOptions{State: "Lagos", MinRent: 50000, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Listings) != 1 || page.Listings[0].ID != "l1" || page.Listings[0].ActiveBidsCount != 2 {
		t.Fatalf("listings = %+v", page.Listings)
	}
	if page.Pagination.TotalCount != 1 {
		t.Errorf("total = %d", page.Pagination.TotalCount)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/auth/login" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Email != "ada@example.com" || req.Password != "secret1" {
			t.Errorf("credentials = %+v", req)
		}
		writeEnvelope(t, w, http.StatusOK, "Login successful", map[string]interface{}{
			"token": "tok",
			"user":  map[string]string{"id": "u1", "role": "landlord"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "").Login("ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok" || resp.User.ID != "u1" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAcceptBid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/api/listings/l1/bids/b1/accept" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Error("expected Bearer tok")
		}
		writeEnvelope(t, w, http.StatusOK, "Bid accepted successfully", map[string]interface{}{
			"id":            "l1",
			"selectedAgent": map[string]interface{}{"agentId": "a1", "commission": 8},
			"agentBids":     []map[string]string{{"id": "b1", "agentId": "a1", "status": "accepted"}},
		})
	}))
	defer srv.Close()

	v, err := New(srv.URL, "tok").AcceptBid("l1", "b1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if v.SelectedAgent == nil || v.SelectedAgent.AgentID != "a1" {
		t.Errorf("selected = %+v", v.SelectedAgent)
	}
	if v.AgentBids[0].Status != listing.BidAccepted {
		t.Errorf("status = %q", v.AgentBids[0].Status)
	}
}

func TestListBids(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings/l1/bids" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeEnvelope(t, w, http.StatusOK, "Bids retrieved successfully", map[string]interface{}{
			"listing": map[string]interface{}{"id": "l1", "title": "Flat", "inviteAgentToBid": true},
			"bids":    []map[string]interface{}{{"id": "b1", "agentId": "a1", "proposedCommission": 5, "status": "pending"}},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "tok").ListBids("l1")
	if err != nil {
		t.Fatalf("bids: %v", err)
	}
	if resp.Listing.Title != "Flat" || len(resp.Bids) != 1 || resp.Bids[0].ProposedCommission != 5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDeleteListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" || r.URL.Path != "/api/listings/l1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		writeEnvelope(t, w, http.StatusOK, "Listing deleted successfully", nil)
	}))
	defer srv.Close()

	if err := New(srv.URL, "tok").DeleteListing("l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"validation failed","errors":["coverLetter is required"]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").SubmitBid("l1", 5, "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || len(apiErr.Errors) != 1 {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").GetListing("l1")
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("err = %v", err)
	}
}
