package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already registered")

	// Validation errors (registration input)
	ErrInvalidUsername = errors.New("username must be 4-20 characters of letters, digits or underscore")
	ErrInvalidNickname = errors.New("nickname must be 2-10 characters")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")

	// Session errors
	ErrSessionExpired = errors.New("session expired or unknown")

	// Credential errors
	ErrBadPassword = errors.New("incorrect password")

	// User data errors
	ErrUserDataNotFound = errors.New("user data not found")
)
