package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gate, s := newTestGate(t)
	ctx := context.Background()

	session, err := gate.Register(ctx, registerInput("Ada", "ada@example.com", "password123"))
	require.NoError(t, err)

	var seen int64
	protected := Middleware(gate.Tokens(), s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		_, ok = TokenFromContext(r.Context())
		require.True(t, ok)
		seen = user.ID
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + session.Token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + session.Token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + session.Token, http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"Unauthenticated."}`, rr.Body.String())
				assert.Zero(t, seen, "handler must not run")
			} else {
				assert.Equal(t, session.User.ID, seen)
			}
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, gate.Logout(ctx, session.User.ID))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
