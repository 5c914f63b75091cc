package repository

import "errors"

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")

	// ErrMissingAnchor is returned when a user has no username, google id or facebook id.
	ErrMissingAnchor = errors.New("user has no identity anchor")
)
