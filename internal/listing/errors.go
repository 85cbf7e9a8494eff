package listing

import "errors"

var (
	ErrNotFound             = errors.New("listing not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrForbidden            = errors.New("forbidden")
	ErrDuplicateBid         = errors.New("agent has already submitted a bid for this listing")
	ErrNotAcceptingBids     = errors.New("this listing is not accepting agent bids")
	ErrNotActive            = errors.New("this listing is not active")
	ErrAgentAlreadySelected = errors.New("an agent has already been selected for this listing")
	ErrConflict             = errors.New("listing was modified by another request, reload and try again")
)
