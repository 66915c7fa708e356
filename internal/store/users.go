package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebook-io/carebook/internal/models"
)

const userColumns = "id, name, email, password, created_at, updated_at"

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// normalizeEmail is applied to every email written or looked up, so
// addresses are unique and matched regardless of case.
func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

func newUser(name, email, passwordHash string) *models.User {
	ts := now()
	return &models.User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func (s *Store) insertUser(ctx context.Context, q queryer, user *models.User) error {
	err := q.QueryRowContext(ctx,
		s.rebind("INSERT INTO users (name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateUser inserts a user; passwordHash must already be hashed.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := newUser(name, email, passwordHash)
	if err := s.insertUser(ctx, s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserWithToken inserts a user and its first token in one transaction.
// issue receives the new user with its id set and returns the token row to
// record. If issue or either insert fails, nothing is written.
func (s *Store) CreateUserWithToken(ctx context.Context, name, email, passwordHash string, issue func(*models.User) (*models.Token, error)) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := newUser(name, email, passwordHash)
	if err := s.insertUser(ctx, tx, user); err != nil {
		return nil, err
	}

	token, err := issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.insertToken(ctx, tx, token); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), normalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// EmailTaken reports whether another user already has email, ignoring case. exceptID
// excludes that user's own row; pass 0 to check against everyone.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?"),
		normalizeEmail(email), exceptID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser persists name, email and password hash of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = now()
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE users SET name = ?, email = ?, password = ?, updated_at = ? WHERE id = ?"),
		user.Name, user.Email, user.PasswordHash, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res)
}

// DeleteUser removes the user together with every token issued to them.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM personal_access_tokens WHERE user_id = ?"), id); err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}
