package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Raw)
	assert.Equal(t, "Registration Successful", resp.Body["message"])
	assert.Equal(t, "Bearer", resp.Body["token_type"])
	assert.NotEmpty(t, resp.Body["token"])
	assert.NotZero(t, resp.Body["user_id"])

	t.Run("duplicate email", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/register", "", map[string]string{
			"name": "Imposter", "email": "ada@example.com", "password": "password456",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		errs := resp.Body["errors"].(map[string]any)
		assert.Equal(t, []any{"The email has already been taken."}, errs["email"])

		users, err := s.store.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/register", "", map[string]string{})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		errs := resp.Body["errors"].(map[string]any)
		assert.Len(t, errs, 3)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		s.api.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"message":"Invalid request body"}`, rr.Body.String())
	})

	t.Run("form encoded", func(t *testing.T) {
		form := url.Values{"name": {"Grace"}, "email": {"grace@example.com"}, "password": {"password123"}}
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		s.api.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})
}

func TestLoginHandler(t *testing.T) {
	s := newTestServer(t)
	_, id := s.register("Ada", "ada@example.com")

	resp := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
	assert.Equal(t, "Login Successful", resp.Body["message"])
	assert.Equal(t, "Bearer", resp.Body["token_type"])
	assert.Equal(t, float64(id), resp.Body["user_id"])

	wrongPassword := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "wrongpassword"})
	unknownEmail := s.do(http.MethodPost, "/login", "", map[string]string{"email": "nobody@example.com", "password": "password123"})

	for _, r := range []response{wrongPassword, unknownEmail} {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"message":"The provided credentials are incorrect"}`, r.Raw)
	}
	assert.Equal(t, wrongPassword.Raw, unknownEmail.Raw, "responses must not reveal which field was wrong")

	invalid := s.do(http.MethodPost, "/login", "", map[string]string{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	s := newTestServer(t)
	first, _ := s.register("Ada", "ada@example.com")

	login := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, login.Code)
	second := login.Body["token"].(string)

	for _, token := range []string{first, second} {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/profile", token, nil).Code)
	}

	resp := s.do(http.MethodPost, "/logout", second, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Logout Successful", resp.Body["message"])

	for _, token := range []string{first, second} {
		resp := s.do(http.MethodGet, "/profile", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Unauthenticated.", resp.Body["message"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/update"},
		{http.MethodGet, "/user"},
		{http.MethodGet, "/appointments"},
		{http.MethodPost, "/appointments"},
		{http.MethodGet, "/appointments/1"},
		{http.MethodPut, "/appointments/1"},
		{http.MethodDelete, "/appointments/1"},
		{http.MethodGet, "/appointments/user/1"},
		{http.MethodPost, "/doctors"},
		{http.MethodPut, "/doctors/1"},
		{http.MethodDelete, "/doctors/1"},
		{http.MethodGet, "/users"},
		{http.MethodDelete, "/users/1"},
	}
	for _, rt := range routes {
		resp := s.do(rt.method, rt.path, "", appointmentBody("1"))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s", rt.method, rt.path)

		resp = s.do(rt.method, rt.path, "bogus", appointmentBody("1"))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s", rt.method, rt.path)
	}
}

func TestProfileHandlers(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register("Ada", "ada@example.com")

	resp := s.do(http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Profile Fetched", resp.Body["message"])
	profile := data(t, resp)
	assert.Equal(t, float64(id), profile["id"])
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, resp.Raw, "$2a$")

	user := s.do(http.MethodGet, "/user", token, nil)
	require.Equal(t, http.StatusOK, user.Code)
	assert.Equal(t, "Ada", user.Body["name"])
	assert.NotContains(t, user.Body, "message")
}

func TestUpdateProfileHandler(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register("Ada", "ada@example.com")
	s.register("Grace", "grace@example.com")

	t.Run("rename", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/update", token, map[string]string{"name": "Ada Lovelace"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Raw)
		assert.Equal(t, "Profile updated successfully", resp.Body["message"])
		assert.Equal(t, "Ada Lovelace", data(t, resp)["name"])
	})

	t.Run("email taken", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/update", token, map[string]string{"email": "grace@example.com"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("wrong current password leaves hash unchanged", func(t *testing.T) {
		before, err := s.store.GetUserByID(context.Background(), id)
		require.NoError(t, err)

		resp := s.do(http.MethodPost, "/update", token, map[string]string{
			"current_password": "not-my-password",
			"new_password":     "brandnewpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "Current password is incorrect", resp.Body["message"])

		after, err := s.store.GetUserByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, before.PasswordHash, after.PasswordHash)
	})

	t.Run("new password without current", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/update", token, map[string]string{"new_password": "brandnewpassword"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("password change", func(t *testing.T) {
		resp := s.do(http.MethodPost, "/update", token, map[string]string{
			"current_password": "password123",
			"new_password":     "brandnewpassword",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Raw)

		login := s.do(http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "brandnewpassword"})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}
