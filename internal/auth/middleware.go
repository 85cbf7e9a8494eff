package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Authenticator resolves bearer tokens to principals.
type Authenticator struct {
	issuer *Issuer
	users  *UserStore
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(issuer *Issuer, users *UserStore) *Authenticator {
	return &Authenticator{issuer: issuer, users: users}
}

// Authenticate returns the principal behind an Authorization header value.
// The account must still exist; its stored role wins over the token's.
func (a *Authenticator) Authenticate(r *http.Request) (Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return Principal{}, ErrUnauthorized
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	p, err := a.issuer.Verify(token)
	if err != nil {
		return Principal{}, err
	}

	u, err := a.users.ByID(r.Context(), p.ID)
	if errors.Is(err, ErrUserNotFound) {
		return Principal{}, ErrUnauthorized
	}
	if err != nil {
		return Principal{}, err
	}
	return u.Principal(), nil
}

// RequirePrincipal is middleware that rejects requests without a valid
// bearer token with 401 and stores the caller's principal in the context.
func (a *Authenticator) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Authenticate(r)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				writeUnauthorized(w, "not authorized, token missing or invalid")
				return
			}
			slog.Error("authenticating request", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "internal server error"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
