package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-words/internal/domain"
)

// Global validator instance for reuse
var validate = validator.New()

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
}

// SubmitReviewRequest is the body of POST /users/{username}/review/{word}.
// Quality is a pointer so that a missing field is distinguishable from 0.
type SubmitReviewRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// NewSubmitReviewRequest builds the request body for g.
func NewSubmitReviewRequest(g domain.Grade) SubmitReviewRequest {
	q := int(g)
	return SubmitReviewRequest{Quality: &q}
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
