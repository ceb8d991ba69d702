package model

import "github.com/Laisky/errors/v2"

// Client-facing validation errors; the message text is part of the HTTP
// contract. They are reported before any side effect happens.
var (
	ErrMissingName      = errors.New("Missing name")
	ErrMissingType      = errors.New("Missing type")
	ErrMissingData      = errors.New("Missing data")
	ErrParentNotFound   = errors.New("Parent not found")
	ErrParentNotAFolder = errors.New("Parent is not a folder")
)

// ErrNotFound the referenced file does not exist (or is hidden from the
// requester).
var ErrNotFound = errors.New("Not found")

// ErrForbidden the file exists but belongs to a different user.
var ErrForbidden = errors.New("Forbidden")

// ErrFolderHasNoContent folders cannot be downloaded.
var ErrFolderHasNoContent = errors.New("A folder doesn't have content")
