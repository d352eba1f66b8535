// Package forms validates user input before it is sent to the API, with the
// same rules the mobile app enforced on its sign-in, sign-up and profile
// screens.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignIn is the sign-in form
type SignIn struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// SignUp is the account creation form
type SignUp struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

// Profile is the profile update form. Password fields are optional, but a
// new password needs the old one and a matching confirmation.
type Profile struct {
	Name            string `form:"name" validate:"required"`
	OldPassword     string `form:"old_password" validate:"required_with=Password"`
	Password        string `form:"password" validate:"omitempty,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required_with=Password,eqfield=Password"`
}

// messages maps "field.tag" to the text shown to the user
var messages = map[string]string{
	"name.required":                  "Enter your name.",
	"email.required":                 "Enter your e-mail.",
	"email.email":                    "Invalid e-mail.",
	"password.required":              "Enter your password.",
	"password.min":                   "The password must have at least 6 characters.",
	"password_confirm.required":      "Confirm your password.",
	"password_confirm.eqfield":       "The password confirmation does not match.",
	"old_password.required_with":     "Enter your old password.",
	"confirm_password.required_with": "Confirm the new password.",
	"confirm_password.eqfield":       "The password confirmation does not match.",
}

// FieldError is a single failed rule
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every failed rule of a form, in field order
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, " ")
}

// Validator checks forms
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name instead of the Go field name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// Validate returns nil or Errors
func (v *Validator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Invalid %s.", fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
