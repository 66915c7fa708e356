package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/carebook-io/carebook/internal/models"
)

// CreateToken records an issued token and fills in its id.
func (s *Store) CreateToken(ctx context.Context, t *models.Token) error {
	return s.insertToken(ctx, s.db, t)
}

func (s *Store) insertToken(ctx context.Context, q queryer, t *models.Token) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
	}
	err := q.QueryRowContext(ctx,
		s.rebind("INSERT INTO personal_access_tokens (user_id, name, jti, created_at, expires_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		t.UserID, t.Name, t.JTI, t.CreatedAt, t.ExpiresAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// GetTokenByJTI looks up a token by its JWT id.
func (s *Store) GetTokenByJTI(ctx context.Context, jti string) (*models.Token, error) {
	var (
		t                   models.Token
		lastUsed, expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, user_id, name, jti, created_at, last_used_at, expires_at FROM personal_access_tokens WHERE jti = ?"),
		jti,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.JTI, &t.CreatedAt, &lastUsed, &expiresAt)
	if err != nil {
		return nil, notFound(err)
	}
	if lastUsed.Valid {
		t.LastUsedAt = &lastUsed.Time
	}
	if expiresAt.Valid {
		t.ExpiresAt = &expiresAt.Time
	}
	return &t, nil
}

// TouchToken stamps the token's last use.
func (s *Store) TouchToken(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind("UPDATE personal_access_tokens SET last_used_at = ? WHERE id = ?"), at.UTC(), id)
	return err
}

// DeleteUserTokens revokes every token belonging to userID and returns how
// many were removed.
func (s *Store) DeleteUserTokens(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM personal_access_tokens WHERE user_id = ?"), userID)
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	return res.RowsAffected()
}
