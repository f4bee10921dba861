package service

import (
	"github.com/AlibekovAA/bloglist/backend/internal/common/validation"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Name     string `json:"name" validate:"max=128"`
}

// validateRegistration reports every offending field in the error details.
func validateRegistration(input RegisterInput) error {
	return validation.Struct(registerPayload{
		Username: input.Username,
		Password: input.Password,
		Name:     input.Name,
	}, ErrValidation)
}
