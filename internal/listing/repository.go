package listing

import (
	"context"
	"strings"
)

// Repository persists listings. Mutate and Delete are conditional on the
// version that was loaded, so a concurrent writer makes them fail with
// ErrConflict instead of silently overwriting.
type Repository interface {
	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id string) (*Listing, error)
	// Mutate loads id, runs fn on a copy and writes the result back if
	// nobody else wrote in between. fn errors abort without writing.
	Mutate(ctx context.Context, id string, fn func(*Listing) error) (*Listing, error)
	// Delete removes id once check passes on the loaded listing.
	Delete(ctx context.Context, id string, check func(*Listing) error) error
	// AddView increments the view counter. It does not bump the version.
	AddView(ctx context.Context, id string) error
	List(ctx context.Context, q Query) (*Page, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
	defaultSort     = "-createdAt"
)

// sortFields maps the API sort keys to their storage names.
var sortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"rentAmount": "rent_amount",
	"views":      "views",
	"expiresAt":  "expires_at",
}

// Query filters the public listing search. Only active listings are ever
// returned.
type Query struct {
	State            string
	Locality         string
	Area             string
	PropertyType     string
	Bedrooms         *int
	Bathrooms        *int
	InviteAgentToBid *bool
	MinRent          *float64
	MaxRent          *float64

	Page     int
	PageSize int
	// Sort is a field name, prefixed with "-" for descending order.
	Sort string
}

// Normalized returns q with paging and sort defaults applied.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if _, _, ok := parseSort(q.Sort); !ok {
		q.Sort = defaultSort
	}
	return q
}

// Skip is the number of matches before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.PageSize
}

// parseSort splits "-field" into its field and direction.
func parseSort(s string) (field string, desc bool, ok bool) {
	desc = strings.HasPrefix(s, "-")
	field = strings.TrimPrefix(s, "-")
	_, ok = sortFields[field]
	return field, desc, ok
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
}

// Page is one page of search results.
type Page struct {
	Listings   []*Listing `json:"listings"`
	Pagination Pagination `json:"pagination"`
}

func newPagination(q Query, total int64) Pagination {
	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return Pagination{
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalCount:  total,
	}
}
