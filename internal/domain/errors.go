package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input fails validation before it is sent
	// to the server. It is usually wrapped with a more specific error.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidUsername is returned when a username does not match the
	// allowed length or character set.
	ErrInvalidUsername = errors.New("username must be 3-20 characters of letters, numbers, and underscores")

	// ErrEmptyWord is returned when a word is blank after normalization.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrInvalidGrade is returned when a review grade is outside 0-5.
	ErrInvalidGrade = errors.New("quality must be between 0 and 5")

	// ErrInvalidStatus is returned when a word list filter is not a known status.
	ErrInvalidStatus = errors.New("invalid word status")
)
