package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account of the application. A user is anchored by at least one
// of Username, GoogleID or FacebookID; each anchor is unique across users when present.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username,omitempty"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	GoogleID     string        `bson:"google_id,omitempty"`
	FacebookID   string        `bson:"facebook_id,omitempty"`
	Secret       string        `bson:"secret,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// HasAnchor reports whether the user carries at least one identity anchor.
func (u *User) HasAnchor() bool {
	return u.Username != "" || u.GoogleID != "" || u.FacebookID != ""
}
