package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to the echo.Validator
// interface so request DTOs are checked against their struct tags.
type CustomValidator struct {
	v *validator.Validate
}

// New builds a validator ready to register on an Echo instance
func New() *CustomValidator {
	return &CustomValidator{v: validator.New()}
}

// Validate checks a bound request struct against its validate tags
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
