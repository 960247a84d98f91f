package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Identity is the user the client believes is logged in. The server owns the
// record; ID and CreatedAt are informational and may be zero.
type Identity struct {
	ID        int64     `json:"id,omitempty"`
	Username  string    `json:"username" validate:"required,min=3,max=20,username"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Validate checks the identity carries a well-formed username.
func (i Identity) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidUsername)
	}
	return nil
}

// NormalizeUsername trims surrounding whitespace and validates the result.
// The returned error wraps both ErrValidation and ErrInvalidUsername.
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validate.Var(username, "required,min=3,max=20,username"); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrInvalidUsername)
	}
	return username, nil
}
