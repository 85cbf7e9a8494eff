// Package web provides the HTTP API for listings, bids and accounts.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/listing"
	"github.com/surekeys/rentals/internal/logging"
	"github.com/surekeys/rentals/internal/media"
)

// Options wires the server's dependencies. Media and Uploads are optional.
type Options struct {
	Listings      *listing.Service
	Accounts      *auth.Service
	Authenticator *auth.Authenticator
	Media         media.Store
	// Uploads serves locally stored images under /uploads/.
	Uploads     http.Handler
	CORSOrigins []string
	// Health reports whether backing stores are reachable.
	Health func(ctx context.Context) error
}

// Server is the API HTTP server.
type Server struct {
	listings *listing.Service
	accounts *auth.Service
	authn    *auth.Authenticator
	media    media.Store
	health   func(ctx context.Context) error
	router   *mux.Router
	handler  http.Handler
}

// NewServer creates the API server and registers its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		listings: opts.Listings,
		accounts: opts.Accounts,
		authn:    opts.Authenticator,
		media:    opts.Media,
		health:   opts.Health,
		router:   mux.NewRouter(),
	}
	s.routes(opts.Uploads)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	s.handler = logging.RequestLogger(c.Handler(s.router))
	return s
}

func (s *Server) routes(uploads http.Handler) {
	r := s.router
	protect := func(h http.HandlerFunc) http.Handler {
		return s.authn.RequirePrincipal(h)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if uploads != nil {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploads)).Methods(http.MethodGet, http.MethodHead)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", s.handleVerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/resend-otp", s.handleResendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api.Handle("/upload", protect(s.handleUpload)).Methods(http.MethodPost)

	api.HandleFunc("/listings", s.handleListListings).Methods(http.MethodGet)
	api.Handle("/listings", protect(s.handleCreateListing)).Methods(http.MethodPost)
	api.Handle("/listing", protect(s.handleCreateListing)).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}", s.handleGetListing).Methods(http.MethodGet)
	api.Handle("/listings/{id}", protect(s.handleUpdateListing)).Methods(http.MethodPut)
	api.Handle("/listings/{id}", protect(s.handleDeleteListing)).Methods(http.MethodDelete)

	api.Handle("/listings/{id}/bids", protect(s.handleListBids)).Methods(http.MethodGet)
	api.Handle("/listings/{id}/bids", protect(s.handleSubmitBid)).Methods(http.MethodPost)
	api.Handle("/listings/{id}/bids/{bidId}/accept", protect(s.handleAcceptBid)).Methods(http.MethodPut)
	api.Handle("/listings/{id}/bids/{bidId}/reject", protect(s.handleRejectBid)).Methods(http.MethodPut)

	// Subrouters answer their own misses, so both routers need the handlers.
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	for _, router := range []*mux.Router{r, api} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = notAllowed
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			slog.Error("health check", "error", err)
			status["status"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
