package model

import "time"

// Session is a persisted session record keyed by its opaque token.
// Data is the encoded session state produced by the session manager.
type Session struct {
	Token     string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
}
