package api

import (
	"errors"
	"net/http"

	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/presenter"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/carebook-io/carebook/internal/validation"
)

const (
	msgDoctorsEmpty   = "No doctors found"
	msgDoctorNotFound = "Doctor not found"
	msgDoctorFailedOp = "Failed to process doctor"
	msgDoctorsFetched = "Doctors fetched successfully"
	msgDoctorFetched  = "Doctor fetched successfully"
	msgDoctorCreated  = "Doctor created successfully"
	msgDoctorUpdated  = "doctor updated successfully"
	msgDoctorDeleted  = "doctor deleted successfully"
)

func (api *Api) ListDoctorsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := api.doctors.ListDoctors(r.Context())
	if err != nil {
		writeInternal(w, r, msgDoctorFailedOp, err)
		return
	}
	if len(list) == 0 {
		writeMessage(w, http.StatusOK, msgDoctorsEmpty)
		return
	}
	writeData(w, http.StatusOK, msgDoctorsFetched, presenter.Doctors(list))
}

func validDoctor(w http.ResponseWriter, r *http.Request) (models.DoctorFields, bool) {
	input, ok := decodeInput(w, r)
	if !ok {
		return models.DoctorFields{}, false
	}
	values, err := validation.Validate(r.Context(), input, validation.DoctorRules())
	if err != nil {
		writeValidation(w, r, StatusResourceValidation, msgAllFieldsRequired, err)
		return models.DoctorFields{}, false
	}
	return models.DoctorFields{
		Name:      values.Get(validation.FieldName),
		Hospital:  values.Get(validation.FieldHospital),
		Specialty: values.Get(validation.FieldSpecialty),
	}, true
}

func (api *Api) CreateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	fields, ok := validDoctor(w, r)
	if !ok {
		return
	}

	d, err := api.doctors.CreateDoctor(r.Context(), fields)
	if err != nil {
		writeInternal(w, r, msgDoctorFailedOp, err)
		return
	}
	writeData(w, http.StatusOK, msgDoctorCreated, presenter.Doctor(d))
}

func (api *Api) loadDoctor(w http.ResponseWriter, r *http.Request) (*models.Doctor, bool) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgDoctorNotFound)
		return nil, false
	}

	d, err := api.doctors.GetDoctor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgDoctorNotFound)
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, msgDoctorFailedOp, err)
		return nil, false
	}
	return d, true
}

func (api *Api) GetDoctorHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := api.loadDoctor(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, msgDoctorFetched, presenter.Doctor(d))
}

func (api *Api) UpdateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := api.loadDoctor(w, r)
	if !ok {
		return
	}
	fields, ok := validDoctor(w, r)
	if !ok {
		return
	}

	d, err := api.doctors.UpdateDoctor(r.Context(), existing.ID, fields)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgDoctorNotFound)
		return
	}
	if err != nil {
		writeInternal(w, r, msgDoctorFailedOp, err)
		return
	}
	writeData(w, http.StatusOK, msgDoctorUpdated, presenter.Doctor(d))
}

func (api *Api) DeleteDoctorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgDoctorNotFound)
		return
	}

	err := api.doctors.DeleteDoctor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgDoctorNotFound)
		return
	}
	if err != nil {
		writeInternal(w, r, msgDoctorFailedOp, err)
		return
	}
	writeMessage(w, http.StatusOK, msgDoctorDeleted)
}
