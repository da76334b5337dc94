package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User repository sentinels.
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	// Favorite repository sentinels.
	ErrFavoriteNotFound = errors.New("favorite not found")
)
