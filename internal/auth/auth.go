// Package auth implements registration, login, logout and profile
// management, plus the bearer-token middleware guarding protected routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/carebook-io/carebook/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCurrentPassword    = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the slice of the credential store the gate needs.
type UserStore interface {
	CreateUserWithToken(ctx context.Context, name, email, passwordHash string, issue func(*models.User) (*models.Token, error)) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token string
	User  *models.User
}

// Gate moves callers between anonymous and authenticated.
type Gate struct {
	users      UserStore
	tokens     *TokenService
	bcryptCost int
	// compared against when the email is unknown so both paths cost a bcrypt check
	dummyHash string
}

func NewGate(users UserStore, tokens *TokenService, bcryptCost int) (*Gate, error) {
	dummy, err := HashPassword("carebook-no-such-user", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}
	return &Gate{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

// Tokens exposes the token service used by the gate.
func (g *Gate) Tokens() *TokenService {
	return g.tokens
}

func (g *Gate) emailTaken(exceptID int64) validation.UniqueFunc {
	return func(ctx context.Context, email string) (bool, error) {
		return g.users.EmailTaken(ctx, email, exceptID)
	}
}

// Register validates input, creates the user and issues its first token.
func (g *Gate) Register(ctx context.Context, input map[string]any) (*Session, error) {
	values, err := validation.Validate(ctx, input, validation.RegisterRules(g.emailTaken(0)))
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(values.Get(validation.FieldPassword), g.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// the user row and its first token are written together or not at all
	var token string
	user, err := g.users.CreateUserWithToken(ctx, values.Get(validation.FieldName), values.Get(validation.FieldEmail), hash,
		func(u *models.User) (*models.Token, error) {
			signed, record, err := g.tokens.issue(u)
			if err != nil {
				return nil, err
			}
			token = signed
			return record, nil
		})
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Registered user %d", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Login checks credentials and issues a new token. Prior tokens stay valid.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (g *Gate) Login(ctx context.Context, input map[string]any) (*Session, error) {
	values, err := validation.Validate(ctx, input, validation.LoginRules())
	if err != nil {
		return nil, err
	}
	password := values.Get(validation.FieldPassword)

	user, err := g.users.GetUserByEmail(ctx, values.Get(validation.FieldEmail))
	if errors.Is(err, store.ErrNotFound) {
		CheckPassword(g.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := g.tokens.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Logout revokes every token the user holds, not only the current one.
func (g *Gate) Logout(ctx context.Context, userID int64) error {
	if _, err := g.Profile(ctx, userID); err != nil {
		return err
	}

	n, err := g.tokens.RevokeAll(ctx, userID)
	if err != nil {
		return err
	}
	log.Printf("[AUTH] Revoked %d token(s) for user %d", n, userID)
	return nil
}

// Profile returns the stored user record.
func (g *Gate) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := g.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile applies a partial update. A new password is only accepted
// after the current password verifies; otherwise nothing is written.
func (g *Gate) UpdateProfile(ctx context.Context, userID int64, input map[string]any) (*models.User, error) {
	values, err := validation.Validate(ctx, input, validation.ProfileRules(g.emailTaken(userID)))
	if err != nil {
		return nil, err
	}

	user, err := g.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if values.Has(validation.FieldNewPassword) {
		if !CheckPassword(user.PasswordHash, values.Get(validation.FieldCurrentPassword)) {
			return nil, ErrCurrentPassword
		}
		hash, err := HashPassword(values.Get(validation.FieldNewPassword), g.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if values.Has(validation.FieldName) {
		user.Name = values.Get(validation.FieldName)
	}
	if values.Has(validation.FieldEmail) {
		user.Email = values.Get(validation.FieldEmail)
	}

	if err := g.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
