package listing

import "github.com/surekeys/rentals/internal/auth"

// Action is something a principal may attempt on a listing.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionSubmitBid Action = "submit_bid"
	ActionAcceptBid Action = "accept_bid"
	ActionRejectBid Action = "reject_bid"
	ActionViewBids  Action = "view_bids"
)

// Can is the single capability check for listing operations.
// l may be nil for ActionCreate.
func Can(p auth.Principal, l *Listing, a Action) bool {
	if !roleAllows(p, a) {
		return false
	}

	switch a {
	case ActionCreate:
		return true
	case ActionSubmitBid:
		return l != nil && p.ID != l.Creator.ID
	case ActionUpdate, ActionDelete, ActionAcceptBid, ActionRejectBid, ActionViewBids:
		return l != nil && p.ID == l.Creator.ID
	}
	return false
}

// roleAllows checks the part of Can that does not depend on the listing.
func roleAllows(p auth.Principal, a Action) bool {
	if p.ID == "" {
		return false
	}
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return p.Role == auth.RoleLandlord || p.Role == auth.RoleAgent
	case ActionSubmitBid:
		return p.Role == auth.RoleAgent
	case ActionAcceptBid, ActionRejectBid, ActionViewBids:
		return p.Role == auth.RoleLandlord
	}
	return false
}

var roleDenials = map[Action]string{
	ActionCreate:    "only landlords and agents can create listings",
	ActionUpdate:    "only landlords and agents can update listings",
	ActionDelete:    "only landlords and agents can delete listings",
	ActionSubmitBid: "only agents can submit bids",
	ActionAcceptBid: "only landlords can accept bids",
	ActionRejectBid: "only landlords can reject bids",
	ActionViewBids:  "only landlords can view bids",
}

var ownerDenials = map[Action]string{
	ActionUpdate:    "you can only update your own listings",
	ActionDelete:    "you can only delete your own listings",
	ActionSubmitBid: "you cannot bid on your own listing",
	ActionAcceptBid: "you can only accept bids on your own listings",
	ActionRejectBid: "you can only reject bids on your own listings",
	ActionViewBids:  "you can only view bids on your own listings",
}

type forbiddenError struct {
	reason string
}

func (e *forbiddenError) Error() string { return e.reason }
func (e *forbiddenError) Unwrap() error { return ErrForbidden }

// checkRole returns an error wrapping ErrForbidden when p's role can never
// perform a, whatever the listing.
func checkRole(p auth.Principal, a Action) error {
	if roleAllows(p, a) {
		return nil
	}
	if reason, ok := roleDenials[a]; ok {
		return &forbiddenError{reason: reason}
	}
	return &forbiddenError{reason: "action not permitted"}
}

// authorize returns an error wrapping ErrForbidden when Can refuses.
func authorize(p auth.Principal, l *Listing, a Action) error {
	if err := checkRole(p, a); err != nil {
		return err
	}
	if Can(p, l, a) {
		return nil
	}
	if reason, ok := ownerDenials[a]; ok {
		return &forbiddenError{reason: reason}
	}
	return &forbiddenError{reason: "action not permitted"}
}
