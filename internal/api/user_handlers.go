package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/carebook-io/carebook/internal/presenter"
	"github.com/carebook-io/carebook/internal/store"
)

func (api *Api) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := api.users.ListUsers(r.Context())
	if err != nil {
		writeInternal(w, r, "Failed to fetch users", err)
		return
	}
	if len(users) == 0 {
		writeMessage(w, http.StatusOK, "No users found")
		return
	}
	writeData(w, http.StatusOK, "Users fetched successfully", presenter.Users(users))
}

// DeleteUserHandler removes a user account; its tokens go with it.
func (api *Api) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	err := api.users.DeleteUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "Failed to delete user", err)
		return
	}

	log.Printf("[API] User %d deleted by user %d", id, currentUser(r).ID)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
