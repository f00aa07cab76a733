package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/pkg/auth"
	"github.com/vastrahub/vastra/pkg/crypt"
	"github.com/vastrahub/vastra/pkg/event"
)

const resetTokenTTL = 15 * time.Minute

// ErrEmailTaken is returned when registering with an email that
// already has an account.
var ErrEmailTaken = errors.New("email is already registered")

// ErrInvalidCredentials is returned for any failed login. It is
// deliberately silent about whether the email exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrResetTokenInvalid is returned for unknown or expired reset tokens.
var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// AuthUserStore is what authentication needs from user storage.
type AuthUserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// AuthService handles registration, login and password resets.
type AuthService struct {
	users AuthUserStore
}

// NewAuthService wires authentication.
func NewAuthService(users AuthUserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a customer account and returns it with a signed
// session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index catches concurrent registrations.
		if repositories.IsDuplicateKey(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", err
	}
	event.FireAsync(event.UserRegistered, u)
	return u, token, nil
}

// Login verifies credentials and returns the account with a signed
// session token. Every failure maps to ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !auth.CheckPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// ForgotPassword issues a reset token for the account, valid for 15
// minutes. Only the SHA-256 digest is stored. When no account exists
// it returns ("", nil, nil) so callers can answer identically either
// way and not leak which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, nil
	}

	raw, err := crypt.RandomToken()
	if err != nil {
		return "", nil, err
	}
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, crypt.Hash(raw), expires); err != nil {
		return "", nil, err
	}
	return raw, u, nil
}

// ResetPassword exchanges a valid reset token for a new password and
// clears the token.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	u, err := s.users.FindByResetToken(ctx, crypt.Hash(rawToken))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}
