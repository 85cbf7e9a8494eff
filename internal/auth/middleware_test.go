package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequirePrincipal(t *testing.T) {
	users := testUserStore(t)
	issuer := testIssuer(t)
	ctx := context.Background()

	if err := users.Create(ctx, newTestUser("u1", "ada@example.com", RoleAgent)); err != nil {
		t.Fatalf("create: %v", err)
	}
	valid, err := issuer.Issue(Principal{ID: "u1", Role: RoleAgent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, err := issuer.Issue(Principal{ID: "deleted", Role: RoleAgent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := NewAuthenticator(issuer, users).RequirePrincipal(inner)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", "Bearer " + orphan, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = Principal{}
			r := httptest.NewRequest("GET", "/api/listings/x/bid", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK && (seen.ID != "u1" || seen.Role != RoleAgent) {
				t.Errorf("principal = %+v", seen)
			}
			if tt.want == http.StatusUnauthorized && w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("content type = %q", w.Header().Get("Content-Type"))
			}
		})
	}
}
