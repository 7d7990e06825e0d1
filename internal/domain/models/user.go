// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an authenticated account (students and admins).
//
// NOTE:
//   - Role on the user document is authoritative. UserProfile.Role only
//     mirrors it for display and is rewritten on every role change.
//   - Metadata carries the sign-up defaults used to create the profile.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"` // lower-cased, unique
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`               // student | admin
	AuthMethod   string             `bson:"auth_method" json:"auth_method"` // password | google
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	Metadata     UserMetadata       `bson:"metadata" json:"metadata"`

	EmailConfirmedAt *time.Time `bson:"email_confirmed_at,omitempty" json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `bson:"last_sign_in_at,omitempty" json:"last_sign_in_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserMetadata holds the values a user supplied at sign-up.
type UserMetadata struct {
	FirstName string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`
}

// IsConfirmed reports whether the user's email address has been confirmed.
func (u *User) IsConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
