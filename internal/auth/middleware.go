package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/store"
)

type contextKey string

const (
	UserContextKey  contextKey = "user"
	TokenContextKey contextKey = "token"
)

// Middleware resolves the bearer token to exactly one user before the
// wrapped handler runs. Anything else is rejected with 401.
func Middleware(tokens *TokenService, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthenticated(w)
				return
			}

			token, err := tokens.Validate(r.Context(), raw)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenExpired) {
					log.Printf("[AUTH] Token lookup failed: %v", err)
				}
				unauthenticated(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), token.UserID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					log.Printf("[AUTH] User lookup failed: %v", err)
				}
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			ctx = context.WithValue(ctx, TokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated."})
}

// UserFromContext returns the authenticated user set by Middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// TokenFromContext returns the token record the request authenticated with.
func TokenFromContext(ctx context.Context) (*models.Token, bool) {
	token, ok := ctx.Value(TokenContextKey).(*models.Token)
	return token, ok
}
