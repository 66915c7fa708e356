package store

import (
	"context"
	"fmt"

	"github.com/carebook-io/carebook/internal/models"
)

const appointmentColumns = "id, location, date, time, description, doctor, user_id, created_at, updated_at"

func scanAppointment(row scanner) (*models.Appointment, error) {
	a := &models.Appointment{}
	err := row.Scan(&a.ID, &a.Location, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// ListAppointments returns every appointment ordered by id. An empty table
// yields an empty slice and no error.
func (s *Store) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return s.queryAppointments(ctx, "SELECT "+appointmentColumns+" FROM appointments ORDER BY id")
}

// ListAppointmentsByUser returns the appointments owned by userID.
func (s *Store) ListAppointmentsByUser(ctx context.Context, userID string) ([]*models.Appointment, error) {
	return s.queryAppointments(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE user_id = ? ORDER BY id", userID)
}

func (s *Store) CreateAppointment(ctx context.Context, f models.AppointmentFields) (*models.Appointment, error) {
	ts := now()
	a := &models.Appointment{
		Location:    f.Location,
		Date:        f.Date,
		Time:        f.Time,
		Description: f.Description,
		Doctor:      f.Doctor,
		UserID:      f.UserID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	err := s.db.QueryRowContext(ctx,
		s.rebind(`INSERT INTO appointments (location, date, time, description, doctor, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		a.Location, a.Date, a.Time, a.Description, a.Doctor, a.UserID, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+appointmentColumns+" FROM appointments WHERE id = ?"), id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// UpdateAppointment overwrites the business fields of an appointment. An
// empty UserID keeps the stored owner.
func (s *Store) UpdateAppointment(ctx context.Context, id int64, f models.AppointmentFields) (*models.Appointment, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE appointments SET location = ?, date = ?, time = ?, description = ?, doctor = ?,
			user_id = COALESCE(NULLIF(?, ''), user_id), updated_at = ? WHERE id = ?`),
		f.Location, f.Date, f.Time, f.Description, f.Doctor, f.UserID, now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return s.GetAppointment(ctx, id)
}

// DeleteAppointment removes the row; deleting a missing id is ErrNotFound.
func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM appointments WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return expectAffected(res)
}
