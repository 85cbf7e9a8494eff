// Package client provides an HTTP client for the rentals REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/listing"
)

// Client is an HTTP client for the rentals API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for public endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Errors)
	}
	return e.Message
}

// envelope is the body shape of every API response.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// LoginResponse is the data returned by POST /api/auth/login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  auth.Profile `json:"user"`
}

// ListingPage is one page of search results.
type ListingPage struct {
	Listings   []listing.View     `json:"listings"`
	Pagination listing.Pagination `json:"pagination"`
}

// BidsResponse is the data returned by GET /api/listings/{id}/bids.
type BidsResponse struct {
	Listing struct {
		ID                 string                 `json:"id"`
		Title              string                 `json:"title"`
		InviteAgentToBid   bool                   `json:"inviteAgentToBid"`
		AgentInviteDetails *listing.InviteDetails `json:"agentInviteDetails"`
	} `json:"listing"`
	Bids []listing.Bid `json:"bids"`
}

// ListOptions controls filtering for ListListings. Zero values are omitted.
type ListOptions struct {
	State            string
	Locality         string
	Area             string
	PropertyType     string
	Bedrooms         int
	MinRent          float64
	MaxRent          float64
	InviteAgentToBid bool
	Page             int
	Limit            int
	Sort             string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("state", o.State)
	set("locality", o.Locality)
	set("area", o.Area)
	set("propertyType", o.PropertyType)
	set("sort", o.Sort)
	if o.Bedrooms > 0 {
		v.Set("bedrooms", strconv.Itoa(o.Bedrooms))
	}
	if o.MinRent > 0 {
		v.Set("minRent", strconv.FormatFloat(o.MinRent, 'f', -1, 64))
	}
	if o.MaxRent > 0 {
		v.Set("maxRent", strconv.FormatFloat(o.MaxRent, 'f', -1, 64))
	}
	if o.InviteAgentToBid {
		v.Set("inviteAgentToBid", "true")
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if _, err := c.send("POST", "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListListings runs the public listing search.
func (c *Client) ListListings(opts ListOptions) (*ListingPage, error) {
	path := "/api/listings"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}

	var page ListingPage
	if _, err := c.send("GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetListing returns a listing by ID.
func (c *Client) GetListing(id string) (*listing.View, error) {
	var v listing.View
	if _, err := c.send("GET", "/api/listings/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateListing posts a raw listing document.
func (c *Client) CreateListing(doc json.RawMessage) (*listing.View, error) {
	var v listing.View
	if _, err := c.send("POST", "/api/listings", doc, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteListing removes a listing.
func (c *Client) DeleteListing(id string) error {
	_, err := c.send("DELETE", "/api/listings/"+url.PathEscape(id), nil, nil)
	return err
}

// SubmitBid places the caller's bid on a listing.
func (c *Client) SubmitBid(id string, commission float64, coverLetter, experience string) (*listing.View, error) {
	body := map[string]interface{}{
		"proposedCommission": commission,
		"coverLetter":        coverLetter,
		"experience":         experience,
	}
	var v listing.View
	if _, err := c.send("POST", bidsPath(id), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListBids returns the bids on one of the caller's listings.
func (c *Client) ListBids(id string) (*BidsResponse, error) {
	var resp BidsResponse
	if _, err := c.send("GET", bidsPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AcceptBid selects a bid's agent for the listing.
func (c *Client) AcceptBid(id, bidID string) (*listing.View, error) {
	return c.decideBid(id, bidID, "accept")
}

// RejectBid rejects a single bid.
func (c *Client) RejectBid(id, bidID string) (*listing.View, error) {
	return c.decideBid(id, bidID, "reject")
}

func (c *Client) decideBid(id, bidID, decision string) (*listing.View, error) {
	var v listing.View
	path := bidsPath(id) + "/" + url.PathEscape(bidID) + "/" + decision
	if _, err := c.send("PUT", path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func bidsPath(id string) string {
	return "/api/listings/" + url.PathEscape(id) + "/bids"
}

// send performs a request with an optional JSON body, unwraps the response
// envelope into result and returns the server's message.
func (c *Client) send(method, path string, body interface{}, result interface{}) (string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) (string, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && env.Message != "" {
			return "", &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: "server error: " + http.StatusText(resp.StatusCode)}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return "", fmt.Errorf("decoding response data: %w", err)
		}
	}
	return env.Message, nil
}
