package model

import "time"

// User is a registered account. Anonymous visitors never get a users
// row; they exist only as sessions until they register.
type User struct {
	UID          string    `json:"uid" db:"uid"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
