// Package session resolves which user and portfolio a request acts on.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/domain"
)

// Header names carrying explicit session ids
const (
	UserHeader      = "X-User-ID"
	PortfolioHeader = "X-Portfolio-ID"
)

type contextKey struct{}

// Lookup finds the fallback user and portfolio when the request names none
type Lookup interface {
	RecentUserID() (int64, error)
	RecentPortfolioID(userID int64) (int64, error)
}

// WithSession stores a session on the context
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored on the context. ok is false when
// no user could be resolved.
func FromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(domain.Session)
	if !ok || s.UserID <= 0 {
		return domain.Session{}, false
	}
	return s, true
}

// Require writes a 401 and returns false when the request has no user
func Require(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no active user; create one with POST /api/users"})
		return domain.Session{}, false
	}
	return s, true
}

// Middleware resolves the session from headers or query parameters and falls
// back to the most recently created user and their latest portfolio.
func Middleware(lookup Lookup, log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("middleware", "session").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := domain.Session{
				UserID:      idFrom(r, UserHeader, "user_id"),
				PortfolioID: idFrom(r, PortfolioHeader, "portfolio_id"),
			}

			if s.UserID <= 0 {
				id, err := lookup.RecentUserID()
				if err != nil {
					log.Warn().Err(err).Msg("Failed to resolve recent user")
				}
				s.UserID = id
			}

			if s.UserID > 0 && s.PortfolioID <= 0 {
				id, err := lookup.RecentPortfolioID(s.UserID)
				if err != nil {
					log.Warn().Err(err).Int64("user_id", s.UserID).Msg("Failed to resolve recent portfolio")
				}
				s.PortfolioID = id
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func idFrom(r *http.Request, header, param string) int64 {
	raw := r.Header.Get(header)
	if raw == "" {
		raw = r.URL.Query().Get(param)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
