// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is the editable name record linked one-to-one with a User.
type UserProfile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Role      string             `bson:"role,omitempty" json:"role,omitempty"` // mirror of User.Role

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (p *UserProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// ManagedUser is one row of the admin "users" tab: an account joined with
// its profile.
type ManagedUser struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Email            string             `bson:"email" json:"email"`
	Role             string             `bson:"role" json:"role"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	EmailConfirmedAt *time.Time         `bson:"email_confirmed_at,omitempty" json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time         `bson:"last_sign_in_at,omitempty" json:"last_sign_in_at,omitempty"`

	FirstName        string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName         string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	ProfileFirstName string `bson:"profile_first_name,omitempty" json:"profile_first_name,omitempty"`
	ProfileLastName  string `bson:"profile_last_name,omitempty" json:"profile_last_name,omitempty"`
}

// DisplayName prefers the profile names and falls back to sign-up metadata.
func (m ManagedUser) DisplayName() string {
	first, last := m.ProfileFirstName, m.ProfileLastName
	if first == "" && last == "" {
		first, last = m.FirstName, m.LastName
	}
	p := UserProfile{FirstName: first, LastName: last}
	return p.FullName()
}
