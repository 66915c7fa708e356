package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/carebook-io/carebook/internal/config"
	"github.com/carebook-io/carebook/internal/database"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Type = database.DialectSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "auth_test.db")

	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db)
}

func newTestGate(t *testing.T) (*Gate, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	gate, err := NewGate(s, NewTokenService(s, testSecret, 0), bcrypt.MinCost)
	require.NoError(t, err)
	return gate, s
}

func registerInput(name, email, password string) map[string]any {
	return map[string]any{"name": name, "email": email, "password": password}
}
