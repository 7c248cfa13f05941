package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie consulted when no Authorization header is sent.
const CookieName = "token"

type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey = contextKey("user")

// Authenticator resolves a bearer token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// TokenFromRequest extracts a bearer token from, in order, the Authorization
// header, the token cookie and the token query parameter. The query parameter
// exists for websocket upgrades, where browsers cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a valid credential and stores the
// authenticated user in the request context.
func Middleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			user, err := authenticator.Authenticate(r.Context(), tokenStr)
			if err != nil {
				if !errors.Is(err, ErrInvalidCredential) && !errors.Is(err, ErrUnknownUser) {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to authenticate request")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"detail": "Internal server error"})
					return
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected credential")
				unauthorized(w, "Could not validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
