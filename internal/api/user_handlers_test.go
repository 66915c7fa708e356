package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlers(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.register("Admin", "admin@example.com")
	victim, victimID := s.register("Grace", "grace@example.com")

	list := s.do(http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, list.Code)
	users := list.Body["data"].([]any)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u.(map[string]any), "password")
	}

	path := "/users/" + strconv.FormatInt(victimID, 10)
	deleted := s.do(http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, "User deleted successfully", deleted.Body["message"])

	// The deleted user's tokens stop working.
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/profile", victim, nil).Code)

	again := s.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "User not found", again.Body["message"])
}
