package api

import (
	"errors"
	"net/http"

	"github.com/carebook-io/carebook/internal/auth"
	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/presenter"
)

const authValidationMessage = "The given data was invalid."

type sessionResponse struct {
	Message   string `json:"message"`
	TokenType string `json:"token_type"`
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	session, err := api.gate.Register(r.Context(), input)
	if err != nil {
		if isValidation(err) {
			writeValidation(w, r, http.StatusUnprocessableEntity, authValidationMessage, err)
			return
		}
		writeInternal(w, r, "Registration Failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Message:   "Registration Successful",
		TokenType: "Bearer",
		Token:     session.Token,
		UserID:    session.User.ID,
	})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	session, err := api.gate.Login(r.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "The provided credentials are incorrect")
		return
	case isValidation(err):
		writeValidation(w, r, http.StatusUnprocessableEntity, authValidationMessage, err)
		return
	default:
		writeInternal(w, r, "Login Failed", err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message:   "Login Successful",
		TokenType: "Bearer",
		Token:     session.Token,
		UserID:    session.User.ID,
	})
}

func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	err := api.gate.Logout(r.Context(), user.ID)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Logout Successful")
	case errors.Is(err, auth.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		writeInternal(w, r, "Logout Failed", err)
	}
}

func (api *Api) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := api.gate.Profile(r.Context(), currentUser(r).ID)
	switch {
	case err == nil:
		writeData(w, http.StatusOK, "Profile Fetched", presenter.User(user))
	case errors.Is(err, auth.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		writeInternal(w, r, "Failed to fetch profile", err)
	}
}

// CurrentUserHandler returns the caller without the message envelope.
func (api *Api) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presenter.User(currentUser(r)))
}

func (api *Api) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	user, err := api.gate.UpdateProfile(r.Context(), currentUser(r).ID, input)
	switch {
	case err == nil:
		writeData(w, http.StatusOK, "Profile updated successfully", presenter.User(user))
	case errors.Is(err, auth.ErrCurrentPassword):
		writeMessage(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, auth.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case isValidation(err):
		writeValidation(w, r, http.StatusUnprocessableEntity, authValidationMessage, err)
	default:
		writeInternal(w, r, "Failed to update profile", err)
	}
}

// currentUser returns the user resolved by the auth middleware. Only call it
// from handlers mounted behind that middleware.
func currentUser(r *http.Request) *models.User {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		panic("api: handler mounted without auth middleware")
	}
	return user
}
