package models

import (
	"strconv"
	"time"
)

// Appointment is a booking made by a user. Date and Time are stored as the
// client sent them; Doctor is a free-text name, not a reference.
type Appointment struct {
	ID          int64     `db:"id"`
	Location    string    `db:"location"`
	Date        string    `db:"date"`
	Time        string    `db:"time"`
	Description string    `db:"description"`
	Doctor      string    `db:"doctor"`
	UserID      string    `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// AppointmentFields is the writable part of an appointment.
type AppointmentFields struct {
	Location    string
	Date        string
	Time        string
	Description string
	Doctor      string
	UserID      string
}

// FormatID renders a numeric identifier as the string form used in
// appointments.user_id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
