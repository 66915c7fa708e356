// Package presenter maps stored records to the JSON shapes clients see.
// Only allow-listed fields are copied; anything else never leaves the server.
package presenter

import (
	"time"

	"github.com/carebook-io/carebook/internal/models"
)

type UserView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AppointmentView struct {
	ID          int64     `json:"id"`
	Location    string    `json:"Location"`
	Date        string    `json:"Date"`
	Time        string    `json:"Time"`
	Description string    `json:"description"`
	Doctor      string    `json:"doctor"`
	UserID      string    `json:"userID"`
	CreatedAt   time.Time `json:"created_at"`
}

type DoctorView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Hospital  string    `json:"hospital"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`
}

func User(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func Appointment(a *models.Appointment) AppointmentView {
	return AppointmentView{
		ID:          a.ID,
		Location:    a.Location,
		Date:        a.Date,
		Time:        a.Time,
		Description: a.Description,
		Doctor:      a.Doctor,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
	}
}

func Doctor(d *models.Doctor) DoctorView {
	return DoctorView{
		ID:        d.ID,
		Name:      d.Name,
		Hospital:  d.Hospital,
		Specialty: d.Specialty,
		CreatedAt: d.CreatedAt,
	}
}

// Users presents a slice; the result is never nil.
func Users(users []*models.User) []UserView {
	return mapAll(users, User)
}

func Appointments(appointments []*models.Appointment) []AppointmentView {
	return mapAll(appointments, Appointment)
}

func Doctors(doctors []*models.Doctor) []DoctorView {
	return mapAll(doctors, Doctor)
}

func mapAll[T any, V any](in []*T, fn func(*T) V) []V {
	out := make([]V, 0, len(in))
	for _, item := range in {
		out = append(out, fn(item))
	}
	return out
}
