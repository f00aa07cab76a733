package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleCustomer = "user"
	RoleAdmin    = "admin"
)

// User is a registered account. Password holds the bcrypt hash and is
// never serialized to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`

	// Password reset flow. The token is stored as a SHA-256 digest so a
	// database leak does not expose usable reset links.
	ResetTokenHash string    `bson:"resetTokenHash,omitempty" json:"-"`
	ResetExpiresAt time.Time `bson:"resetExpiresAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Sanitized returns the fields safe to expose in API responses.
func (u *User) Sanitized() map[string]interface{} {
	return map[string]interface{}{
		"_id":   u.ID.Hex(),
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
