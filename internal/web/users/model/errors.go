package model

import "github.com/Laisky/errors/v2"

// Client-facing registration errors; the message text is part of the
// HTTP contract.
var (
	ErrMissingEmail    = errors.New("Missing email")
	ErrMissingPassword = errors.New("Missing password")
	ErrEmailTaken      = errors.New("Already exist")
)

// ErrInvalidCredentials indicates the login credentials are invalid.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound indicates the referenced user record is absent.
var ErrUserNotFound = errors.New("user not found")
