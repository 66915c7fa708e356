package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/carebook-io/carebook/internal/config"
	"github.com/carebook-io/carebook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func trustClientOwner(cfg *config.Config) {
	cfg.Appointments.TrustClientOwner = true
}

func TestAppointmentRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register("Ada", "ada@example.com")
	body := appointmentBody("")

	created := s.do(http.MethodPost, "/appointments", token, body)
	require.Equal(t, http.StatusOK, created.Code, created.Raw)
	assert.Equal(t, "Appointment created successfully", created.Body["message"])
	apptID := data(t, created)["id"].(float64)

	got := s.do(http.MethodGet, "/appointments/"+strconv.Itoa(int(apptID)), token, nil)
	require.Equal(t, http.StatusOK, got.Code, got.Raw)
	view := data(t, got)

	for field, want := range body {
		assert.Equal(t, want, view[field], field)
	}
	assert.Equal(t, strconv.FormatInt(id, 10), view["userID"], "owner comes from the session")
	assert.NotEmpty(t, view["created_at"])
	assert.ElementsMatch(t,
		[]string{"id", "Location", "Date", "Time", "description", "doctor", "userID", "created_at"},
		keysOf(view))
}

func TestAppointmentValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ada", "ada@example.com")

	resp := s.do(http.MethodPost, "/appointments", token, map[string]any{"Location": "Room 4"})
	require.Equal(t, StatusResourceValidation, resp.Code)
	assert.Equal(t, "All fields are required", resp.Body["message"])
	errs := resp.Body["errors"].(map[string]any)
	assert.Contains(t, errs, "Date")
	assert.Contains(t, errs, "doctor")
	assert.NotContains(t, errs, "Location")
	assert.NotContains(t, errs, "userID", "owner is optional when taken from the session")
}

func TestAppointmentListEmpty(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ada", "ada@example.com")

	resp := s.do(http.MethodGet, "/appointments", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"message":"No appointment found"}`, resp.Raw)
}

func TestAppointmentDeleteMissing(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ada", "ada@example.com")

	resp := s.do(http.MethodDelete, "/appointments/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Appointment not found", resp.Body["message"])

	resp = s.do(http.MethodDelete, "/appointments/not-a-number", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAppointmentUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("Ada", "ada@example.com")

	created := s.do(http.MethodPost, "/appointments", token, appointmentBody(""))
	require.Equal(t, http.StatusOK, created.Code)
	path := "/appointments/" + strconv.Itoa(int(data(t, created)["id"].(float64)))

	body := appointmentBody("")
	body["Location"] = "Room 9"
	updated := s.do(http.MethodPut, path, token, body)
	require.Equal(t, http.StatusOK, updated.Code, updated.Raw)
	assert.Equal(t, "Appointment updated successfully", updated.Body["message"])
	assert.Equal(t, "Room 9", data(t, updated)["Location"])

	invalid := s.do(http.MethodPut, path, token, map[string]any{})
	assert.Equal(t, StatusResourceValidation, invalid.Code)

	deleted := s.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, "Appointment deleted successfully", deleted.Body["message"])

	again := s.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestAppointmentOwnership(t *testing.T) {
	s := newTestServer(t)
	ada, adaID := s.register("Ada", "ada@example.com")
	grace, graceID := s.register("Grace", "grace@example.com")

	// A client supplied owner is ignored.
	created := s.do(http.MethodPost, "/appointments", ada, appointmentBody(strconv.FormatInt(graceID, 10)))
	require.Equal(t, http.StatusOK, created.Code)
	view := data(t, created)
	assert.Equal(t, strconv.FormatInt(adaID, 10), view["userID"])
	path := "/appointments/" + strconv.Itoa(int(view["id"].(float64)))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, grace, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, path, grace, appointmentBody("")).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, grace, nil).Code)

	graceList := s.do(http.MethodGet, "/appointments", grace, nil)
	assert.Equal(t, "No appointment found", graceList.Body["message"])

	adaList := s.do(http.MethodGet, "/appointments", ada, nil)
	assert.Len(t, adaList.Body["data"], 1)

	own := s.do(http.MethodGet, "/appointments/user/"+strconv.FormatInt(adaID, 10), ada, nil)
	assert.Equal(t, http.StatusOK, own.Code)
	assert.Len(t, own.Body["data"], 1)

	foreign := s.do(http.MethodGet, "/appointments/user/"+strconv.FormatInt(adaID, 10), grace, nil)
	assert.Equal(t, http.StatusForbidden, foreign.Code)

	// Still there after Grace's attempts.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, ada, nil).Code)
}

func TestAppointmentClientOwnerMode(t *testing.T) {
	s := newTestServer(t, trustClientOwner)
	ada, _ := s.register("Ada", "ada@example.com")
	grace, _ := s.register("Grace", "grace@example.com")

	missingOwner := s.do(http.MethodPost, "/appointments", ada, appointmentBody(""))
	require.Equal(t, StatusResourceValidation, missingOwner.Code)
	errs := missingOwner.Body["errors"].(map[string]any)
	assert.Equal(t, []any{"The userID field is required."}, errs["userID"])

	created := s.do(http.MethodPost, "/appointments", ada, appointmentBody("42"))
	require.Equal(t, http.StatusOK, created.Code)
	view := data(t, created)
	assert.Equal(t, "42", view["userID"])
	path := "/appointments/" + strconv.Itoa(int(view["id"].(float64)))

	// Everyone sees and may change every appointment.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, grace, nil).Code)
	assert.Len(t, s.do(http.MethodGet, "/appointments", grace, nil).Body["data"], 1)
	assert.Len(t, s.do(http.MethodGet, "/appointments/user/42", grace, nil).Body["data"], 1)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, grace, nil).Code)
}

type mockAppointments struct {
	mock.Mock
}

func (m *mockAppointments) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*models.Appointment)
	return list, args.Error(1)
}

func (m *mockAppointments) ListAppointmentsByUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*models.Appointment)
	return list, args.Error(1)
}

func (m *mockAppointments) CreateAppointment(ctx context.Context, f models.AppointmentFields) (*models.Appointment, error) {
	args := m.Called(ctx, f)
	a, _ := args.Get(0).(*models.Appointment)
	return a, args.Error(1)
}

func (m *mockAppointments) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Appointment)
	return a, args.Error(1)
}

func (m *mockAppointments) UpdateAppointment(ctx context.Context, id int64, f models.AppointmentFields) (*models.Appointment, error) {
	args := m.Called(ctx, id, f)
	a, _ := args.Get(0).(*models.Appointment)
	return a, args.Error(1)
}

func (m *mockAppointments) DeleteAppointment(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestAppointmentStoreFailure(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register("Ada", "ada@example.com")

	repo := new(mockAppointments)
	repo.On("ListAppointmentsByUser", mock.Anything, strconv.FormatInt(id, 10)).
		Return(nil, errors.New("connection reset by peer"))
	repo.On("CreateAppointment", mock.Anything, mock.AnythingOfType("models.AppointmentFields")).
		Return(nil, errors.New("disk full"))
	s.api.appointments = repo

	list := s.do(http.MethodGet, "/appointments", token, nil)
	assert.Equal(t, http.StatusInternalServerError, list.Code)
	assert.NotContains(t, list.Raw, "connection reset")

	create := s.do(http.MethodPost, "/appointments", token, appointmentBody(""))
	assert.Equal(t, http.StatusInternalServerError, create.Code)
	assert.NotContains(t, create.Raw, "disk full")

	repo.AssertExpectations(t)
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
