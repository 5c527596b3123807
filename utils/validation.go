package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^@[A-Za-z0-9]{3,29}$`)

// ValidUsername reports whether s is "@" followed by at least three
// alphanumerics, thirty characters at most.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// NewValidator returns a validator with the project's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	return v
}
