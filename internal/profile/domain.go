// Package profile stores the organisation's identity shown on reports.
package profile

import "github.com/go-playground/validator/v10"

// Profile is a singleton record; there is exactly one organisation.
type Profile struct {
	Name    string `json:"name"`
	RIF     string `json:"rif"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	LogoURL string `json:"logoUrl"`
}

// UpdateInput carries the editable fields.
type UpdateInput struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	RIF     string `json:"rif" validate:"required,max=20"`
	Address string `json:"address" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the input against the field rules.
func (in UpdateInput) Validate() error {
	return validate.Struct(in)
}

// Apply maps the input onto a profile record.
func (in UpdateInput) Apply() Profile {
	return Profile{
		Name:    in.Name,
		RIF:     in.RIF,
		Address: in.Address,
		Phone:   in.Phone,
		Email:   in.Email,
		LogoURL: in.LogoURL,
	}
}
