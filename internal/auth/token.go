package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenStore persists issued tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, t *models.Token) error
	GetTokenByJTI(ctx context.Context, jti string) (*models.Token, error)
	TouchToken(ctx context.Context, id int64, at time.Time) error
	DeleteUserTokens(ctx context.Context, userID int64) (int64, error)
}

// TokenService issues, validates and revokes bearer tokens. A token is a
// signed JWT whose ID must still be present in the token store, so deleting
// the stored rows revokes tokens immediately.
type TokenService struct {
	store  TokenStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// NewTokenService creates a TokenService. A zero ttl issues tokens that never expire.
func NewTokenService(store TokenStore, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// TokenName is the label stored with every token issued to user.
func TokenName(user *models.User) string {
	return user.Name + "Auth-Token"
}

// Create issues a new token for user. Existing tokens stay valid.
func (s *TokenService) Create(ctx context.Context, user *models.User) (string, error) {
	signed, record, err := s.issue(user)
	if err != nil {
		return "", err
	}
	if err := s.store.CreateToken(ctx, record); err != nil {
		return "", err
	}
	return signed, nil
}

// issue signs a token for user and returns the row that makes it valid.
// Nothing is persisted.
func (s *TokenService) issue(user *models.User) (string, *models.Token, error) {
	now := s.now()
	record := &models.Token{
		UserID:    user.ID,
		Name:      TokenName(user),
		JTI:       s.newID(),
		CreatedAt: now.UTC(),
	}

	claims := jwt.RegisteredClaims{
		ID:       record.JTI,
		Subject:  strconv.FormatInt(user.ID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl).UTC()
		record.ExpiresAt = &expires
		claims.ExpiresAt = jwt.NewNumericDate(expires)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, record, nil
}

// Validate resolves a bearer token to its stored record.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*models.Token, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	record, err := s.store.GetTokenByJTI(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if strconv.FormatInt(record.UserID, 10) != claims.Subject {
		return nil, ErrInvalidToken
	}
	if record.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	if err := s.store.TouchToken(ctx, record.ID, s.now()); err != nil {
		log.Printf("[AUTH] Failed to update token last use: %v", err)
	}
	return record, nil
}

// RevokeAll deletes every token issued to userID.
func (s *TokenService) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	return s.store.DeleteUserTokens(ctx, userID)
}
