package store

import (
	"context"
	"fmt"

	"github.com/carebook-io/carebook/internal/models"
)

const doctorColumns = "id, name, hospital, specialty, created_at, updated_at"

func scanDoctor(row scanner) (*models.Doctor, error) {
	d := &models.Doctor{}
	if err := row.Scan(&d.ID, &d.Name, &d.Hospital, &d.Specialty, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+doctorColumns+" FROM doctors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*models.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (s *Store) CreateDoctor(ctx context.Context, f models.DoctorFields) (*models.Doctor, error) {
	ts := now()
	d := &models.Doctor{
		Name:      f.Name,
		Hospital:  f.Hospital,
		Specialty: f.Specialty,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	err := s.db.QueryRowContext(ctx,
		s.rebind("INSERT INTO doctors (name, hospital, specialty, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		d.Name, d.Hospital, d.Specialty, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

func (s *Store) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+doctorColumns+" FROM doctors WHERE id = ?"), id)
	d, err := scanDoctor(row)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (s *Store) UpdateDoctor(ctx context.Context, id int64, f models.DoctorFields) (*models.Doctor, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE doctors SET name = ?, hospital = ?, specialty = ?, updated_at = ? WHERE id = ?"),
		f.Name, f.Hospital, f.Specialty, now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return s.GetDoctor(ctx, id)
}

func (s *Store) DeleteDoctor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM doctors WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return expectAffected(res)
}
