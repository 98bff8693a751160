package domain

import "context"

// User is a registered user. Users are managed elsewhere; this service only reads them.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"-"`
}

// UserRepository defines the interface for user lookups.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
