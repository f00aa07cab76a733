package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/pkg/auth"
	"github.com/vastrahub/vastra/pkg/crypt"
)

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(u.Email)
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	s.users[id].ResetTokenHash = tokenHash
	s.users[id].ResetExpiresAt = expiresAt
	return nil
}

func (s *fakeUserStore) FindByResetToken(_ context.Context, tokenHash string) (*models.User, error) {
	for _, u := range s.users {
		if u.ResetTokenHash == tokenHash && u.ResetExpiresAt.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	s.users[id].Password = passwordHash
	s.users[id].ResetTokenHash = ""
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "Asha", "Asha@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.Equal(t, "user", u.Role)
	assert.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)

	// Stored hash, not the plaintext.
	assert.NotEqual(t, "s3cret-pass", store.users[u.ID].Password)

	// Login works regardless of email casing.
	_, token2, err := svc.Login(ctx, "asha@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token2)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Asha", "asha@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Another", "asha@example.com", "other-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Asha", "asha@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, errWrongPass := svc.Login(ctx, "asha@example.com", "wrong")
	_, _, errNoUser := svc.Login(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestPasswordResetFlow(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "Asha", "asha@example.com", "s3cret-pass")
	require.NoError(t, err)

	raw, user, err := svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, raw)

	// Only the digest is stored.
	assert.NotEqual(t, raw, store.users[u.ID].ResetTokenHash)
	assert.Equal(t, crypt.Hash(raw), store.users[u.ID].ResetTokenHash)

	require.NoError(t, svc.ResetPassword(ctx, raw, "brand-new-pass"))

	_, _, err = svc.Login(ctx, "asha@example.com", "brand-new-pass")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "asha@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	raw, user, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Nil(t, user)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())
	err := svc.ResetPassword(context.Background(), "deadbeef", "whatever-pass")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
