package models

import (
	"github.com/google/uuid"
)

// User is the stored account record, keyed by Email.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
}

// UserOut is the public projection of a User.
type UserOut struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (u User) Public() UserOut {
	return UserOut{
		ID:    u.ID,
		Email: u.Email,
	}
}
