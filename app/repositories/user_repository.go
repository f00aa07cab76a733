package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/pkg/database"
	"github.com/vastrahub/vastra/pkg/middleware"
)

// UserRepository persists user accounts. It also implements
// middleware.UserResolver so the auth gate can load live accounts.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository uses the connected database.
func NewUserRepository() *UserRepository {
	return &UserRepository{col: database.Collection(database.ColUsers)}
}

// NewUserRepositoryWith wraps an explicit collection (used by tests).
func NewUserRepositoryWith(col *mongo.Collection) *UserRepository {
	return &UserRepository{col: col}
}

// Create inserts the user. Emails are stored lower-cased; the unique
// index on email turns races into a duplicate-key error.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByEmail returns the user or (nil, nil) when no account exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return &u, nil
}

// FindByID returns the user or (nil, nil) when it does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: find %s: %w", id.Hex(), err)
	}
	return &u, nil
}

// SetResetToken stores the reset token digest with its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"resetTokenHash": tokenHash,
		"resetExpiresAt": expiresAt,
		"updatedAt":      time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("users: set reset token: %w", err)
	}
	return nil
}

// FindByResetToken returns the user holding an unexpired token digest,
// or (nil, nil) when none matches.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{
		"resetTokenHash": tokenHash,
		"resetExpiresAt": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by reset token: %w", err)
	}
	return &u, nil
}

// UpdatePassword stores a new password hash and clears any reset token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"resetTokenHash": "", "resetExpiresAt": ""},
	})
	if err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	return nil
}

// Count returns the total number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("users: count all: %w", err)
	}
	return n, nil
}

// ResolveUser loads the account behind a token subject. Implements
// middleware.UserResolver.
func (r *UserRepository) ResolveUser(ctx context.Context, id string) (middleware.Identity, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return middleware.Identity{}, false
	}
	u, err := r.FindByID(ctx, oid)
	if err != nil || u == nil {
		return middleware.Identity{}, false
	}
	return middleware.Identity{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}, true
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
