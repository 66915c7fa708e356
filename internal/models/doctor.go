package models

import "time"

type Doctor struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Hospital  string    `db:"hospital"`
	Specialty string    `db:"specialty"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type DoctorFields struct {
	Name      string
	Hospital  string
	Specialty string
}
