package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs Errors
	require.True(t, errors.As(err, &errs), "expected forms.Errors, got %T", err)

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestSignIn(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		form     SignIn
		expected map[string]string
	}{
		{
			name: "valid",
			form: SignIn{Email: "valid@x.com", Password: "secret1"},
		},
		{
			name:     "missing everything",
			form:     SignIn{},
			expected: map[string]string{"email": "Enter your e-mail.", "password": "Enter your password."},
		},
		{
			name:     "bad email and short password",
			form:     SignIn{Email: "nope", Password: "123"},
			expected: map[string]string{"email": "Invalid e-mail.", "password": "The password must have at least 6 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.expected, fieldsOf(t, err))
		})
	}
}

func TestSignUp_ConfirmationMustMatch(t *testing.T) {
	v := New()

	err := v.Validate(SignUp{Name: "Ana", Email: "ana@x.com", Password: "secret1", PasswordConfirm: "secret2"})
	assert.Equal(t, map[string]string{"password_confirm": "The password confirmation does not match."}, fieldsOf(t, err))

	assert.NoError(t, v.Validate(SignUp{Name: "Ana", Email: "ana@x.com", Password: "secret1", PasswordConfirm: "secret1"}))
}

func TestProfile(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		form     Profile
		expected map[string]string
	}{
		{
			name: "name only",
			form: Profile{Name: "Ana"},
		},
		{
			name: "password change",
			form: Profile{Name: "Ana", OldPassword: "secret1", Password: "secret2", ConfirmPassword: "secret2"},
		},
		{
			name:     "missing name",
			form:     Profile{},
			expected: map[string]string{"name": "Enter your name."},
		},
		{
			name: "new password without old password or confirmation",
			form: Profile{Name: "Ana", Password: "secret2"},
			expected: map[string]string{
				"old_password":     "Enter your old password.",
				"confirm_password": "Confirm the new password.",
			},
		},
		{
			name:     "confirmation mismatch",
			form:     Profile{Name: "Ana", OldPassword: "secret1", Password: "secret2", ConfirmPassword: "secret3"},
			expected: map[string]string{"confirm_password": "The password confirmation does not match."},
		},
		{
			name:     "short new password",
			form:     Profile{Name: "Ana", OldPassword: "secret1", Password: "abc", ConfirmPassword: "abc"},
			expected: map[string]string{"password": "The password must have at least 6 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.form)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.expected, fieldsOf(t, err))
		})
	}
}

func TestErrors_ErrorJoinsMessages(t *testing.T) {
	errs := Errors{{Field: "a", Message: "First."}, {Field: "b", Message: "Second."}}
	assert.Equal(t, "First. Second.", errs.Error())
}
