package webserver

import (
	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate returns validator.ValidationErrors untouched so handlers can map
// them to field-level form messages.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
