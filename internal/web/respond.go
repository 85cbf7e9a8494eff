package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/listing"
	"github.com/surekeys/rentals/internal/logging"
	"github.com/surekeys/rentals/internal/media"
	"github.com/surekeys/rentals/internal/validate"
)

const maxBodyBytes = 1 << 20

// envelope is the shape of every API response body.
type envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// writeJSON writes an envelope with the given status code.
func writeJSON(w http.ResponseWriter, code int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		http.Error(w, `{"message":"encode failed"}`, http.StatusInternalServerError)
	}
}

func writeData(w http.ResponseWriter, code int, msg string, data interface{}) {
	writeJSON(w, code, envelope{Message: msg, Data: data})
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Message: msg})
}

// errorStatuses maps domain errors to HTTP status codes. Order matters
// only where one error wraps another.
var errorStatuses = []struct {
	target error
	code   int
}{
	{listing.ErrForbidden, http.StatusForbidden},
	{auth.ErrNotVerified, http.StatusForbidden},
	{listing.ErrNotFound, http.StatusNotFound},
	{listing.ErrBidNotFound, http.StatusNotFound},
	{auth.ErrUserNotFound, http.StatusNotFound},
	{listing.ErrDuplicateBid, http.StatusBadRequest},
	{listing.ErrNotAcceptingBids, http.StatusBadRequest},
	{listing.ErrNotActive, http.StatusBadRequest},
	{auth.ErrAlreadyVerified, http.StatusBadRequest},
	{auth.ErrInvalidOTP, http.StatusBadRequest},
	{auth.ErrOTPNotSet, http.StatusBadRequest},
	{media.ErrUpload, http.StatusBadRequest},
	{listing.ErrConflict, http.StatusConflict},
	{listing.ErrAgentAlreadySelected, http.StatusConflict},
	{auth.ErrEmailTaken, http.StatusConflict},
	{auth.ErrOTPExpired, http.StatusGone},
	{auth.ErrRateLimited, http.StatusTooManyRequests},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrUnauthorized, http.StatusUnauthorized},
}

// writeError classifies err and writes the matching response. Unexpected
// errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "validation failed", Errors: verr.Errors})
		return
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			msg := err.Error()
			if e.code == http.StatusUnauthorized {
				msg = e.target.Error()
			}
			writeMessage(w, e.code, msg)
			return
		}
	}

	logging.FromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &validate.Error{Errors: []string{"request body is required"}}
		}
		return &validate.Error{Errors: []string{fmt.Sprintf("invalid JSON body: %v", err)}}
	}
	return nil
}

// principal returns the caller stored by the auth middleware.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}
