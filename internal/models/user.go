package models

import "time"

// User is a row in the users table. The password digest is serialized
// on purpose: the API echoes the full row on register and GET /users/{id}.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Login        *string   `json:"login,omitempty" db:"login"`
	FirstName    *string   `json:"firstName,omitempty" db:"first_name"`
	LastName     *string   `json:"lastName,omitempty" db:"last_name"`
	Picture      *string   `json:"picture,omitempty" db:"picture"`
	PasswordHash string    `json:"password" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
