package service

import (
	"github.com/AlibekovAA/bloglist/backend/internal/common/validation"
)

// likes is stored as a PostgreSQL integer; max keeps it inside int4.
type createPayload struct {
	Title  string `json:"title" validate:"required,notblank,max=512"`
	Author string `json:"author" validate:"max=256"`
	URL    string `json:"url" validate:"required,notblank,max=2048"`
	Likes  *int   `json:"likes" validate:"omitnil,min=0,max=2147483647"`
}

type updatePayload struct {
	Title  *string `json:"title" validate:"omitnil,notblank,max=512"`
	Author *string `json:"author" validate:"omitnil,max=256"`
	URL    *string `json:"url" validate:"omitnil,notblank,max=2048"`
	Likes  *int    `json:"likes" validate:"omitnil,min=0,max=2147483647"`
}

func validateCreate(input CreateInput) error {
	return validation.Struct(createPayload{
		Title:  input.Title,
		Author: input.Author,
		URL:    input.URL,
		Likes:  input.Likes,
	}, ErrValidation)
}

func validateUpdate(input UpdateInput) error {
	return validation.Struct(updatePayload{
		Title:  input.Title,
		Author: input.Author,
		URL:    input.URL,
		Likes:  input.Likes,
	}, ErrValidation)
}
