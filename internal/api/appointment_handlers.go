package api

import (
	"errors"
	"net/http"

	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/presenter"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/carebook-io/carebook/internal/validation"
	"github.com/go-chi/chi/v5"
)

const (
	msgAppointmentsEmpty   = "No appointment found"
	msgAppointmentNotFound = "Appointment not found"
	msgAllFieldsRequired   = "All fields are required"
	msgForbidden           = "This action is unauthorized."
	msgAppointmentFailedOp = "Failed to process appointment"
	msgAppointmentsFetched = "Appointments fetched successfully"
	msgAppointmentFetched  = "Appointment fetched successfully"
	msgAppointmentCreated  = "Appointment created successfully"
	msgAppointmentUpdated  = "Appointment updated successfully"
	msgAppointmentDeleted  = "Appointment deleted successfully"
)

// trustClientOwner reports whether appointments take their owner from the
// request body instead of the authenticated caller.
func (api *Api) trustClientOwner() bool {
	return api.Config.Appointments.TrustClientOwner
}

// visible reports whether the caller may see or change a.
func (api *Api) visible(r *http.Request, a *models.Appointment) bool {
	return api.trustClientOwner() || a.UserID == currentUser(r).UserID()
}

func (api *Api) writeAppointments(w http.ResponseWriter, list []*models.Appointment) {
	if len(list) == 0 {
		writeMessage(w, http.StatusOK, msgAppointmentsEmpty)
		return
	}
	writeData(w, http.StatusOK, msgAppointmentsFetched, presenter.Appointments(list))
}

// ListAppointmentsHandler lists every appointment when owners are client
// supplied, otherwise only the caller's own.
func (api *Api) ListAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	var (
		list []*models.Appointment
		err  error
	)
	if api.trustClientOwner() {
		list, err = api.appointments.ListAppointments(r.Context())
	} else {
		list, err = api.appointments.ListAppointmentsByUser(r.Context(), currentUser(r).UserID())
	}
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return
	}
	api.writeAppointments(w, list)
}

func (api *Api) ListUserAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userID")
	if !api.trustClientOwner() && owner != currentUser(r).UserID() {
		writeMessage(w, http.StatusForbidden, msgForbidden)
		return
	}

	list, err := api.appointments.ListAppointmentsByUser(r.Context(), owner)
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return
	}
	api.writeAppointments(w, list)
}

func (api *Api) appointmentFields(r *http.Request, values validation.Values) models.AppointmentFields {
	f := models.AppointmentFields{
		Location:    values.Get(validation.FieldLocation),
		Date:        values.Get(validation.FieldDate),
		Time:        values.Get(validation.FieldTime),
		Description: values.Get(validation.FieldDescription),
		Doctor:      values.Get(validation.FieldDoctor),
		UserID:      values.Get(validation.FieldUserID),
	}
	if !api.trustClientOwner() {
		f.UserID = currentUser(r).UserID()
	}
	return f
}

// validAppointment decodes and validates the body, writing the failure
// response itself.
func (api *Api) validAppointment(w http.ResponseWriter, r *http.Request) (models.AppointmentFields, bool) {
	input, ok := decodeInput(w, r)
	if !ok {
		return models.AppointmentFields{}, false
	}
	values, err := validation.Validate(r.Context(), input, validation.AppointmentRules(api.trustClientOwner()))
	if err != nil {
		writeValidation(w, r, StatusResourceValidation, msgAllFieldsRequired, err)
		return models.AppointmentFields{}, false
	}
	return api.appointmentFields(r, values), true
}

func (api *Api) CreateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	fields, ok := api.validAppointment(w, r)
	if !ok {
		return
	}

	a, err := api.appointments.CreateAppointment(r.Context(), fields)
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return
	}
	writeData(w, http.StatusOK, msgAppointmentCreated, presenter.Appointment(a))
}

// loadAppointment resolves {id} to an appointment the caller may access.
// Appointments owned by someone else are reported as missing.
func (api *Api) loadAppointment(w http.ResponseWriter, r *http.Request) (*models.Appointment, bool) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgAppointmentNotFound)
		return nil, false
	}

	a, err := api.appointments.GetAppointment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !api.visible(r, a)) {
		writeMessage(w, http.StatusNotFound, msgAppointmentNotFound)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return nil, false
	}
	return a, true
}

func (api *Api) GetAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	a, ok := api.loadAppointment(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, msgAppointmentFetched, presenter.Appointment(a))
}

func (api *Api) UpdateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := api.loadAppointment(w, r)
	if !ok {
		return
	}
	fields, ok := api.validAppointment(w, r)
	if !ok {
		return
	}

	a, err := api.appointments.UpdateAppointment(r.Context(), existing.ID, fields)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgAppointmentNotFound)
		return
	}
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return
	}
	writeData(w, http.StatusOK, msgAppointmentUpdated, presenter.Appointment(a))
}

func (api *Api) DeleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := api.loadAppointment(w, r)
	if !ok {
		return
	}

	err := api.appointments.DeleteAppointment(r.Context(), existing.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgAppointmentNotFound)
		return
	}
	if err != nil {
		writeInternal(w, r, msgAppointmentFailedOp, err)
		return
	}
	writeMessage(w, http.StatusOK, msgAppointmentDeleted)
}
