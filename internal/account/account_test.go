package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/globeguru/internal/model"
)

func validForm() model.SignupForm {
	return model.SignupForm{
		Name:            "Ada Traveler",
		Email:           "ada@example.com",
		Password:        "s3cretpass",
		ConfirmPassword: "s3cretpass",
		AgreeToTerms:    true,
	}
}

func TestValidateSignupAcceptsValidForm(t *testing.T) {
	assert.NoError(t, ValidateSignup(validForm()))
}

func TestValidateSignupFieldMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SignupForm)
		field  string
		msg    string
	}{
		{"password mismatch", func(f *model.SignupForm) { f.ConfirmPassword = "different1" }, "confirmPassword", "passwords do not match"},
		{"blank name", func(f *model.SignupForm) { f.Name = "   " }, "name", "name is required"},
		{"bad email", func(f *model.SignupForm) { f.Email = "not-an-email" }, "email", "email is not a valid address"},
		{"short password", func(f *model.SignupForm) { f.Password, f.ConfirmPassword = "short", "short" }, "password", "password must be at least 8 characters"},
		{"terms", func(f *model.SignupForm) { f.AgreeToTerms = false }, "agreeToTerms", "you must agree to the terms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := ValidateSignup(form)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestValidationErrorMessageIsOrdered(t *testing.T) {
	err := ValidateSignup(model.SignupForm{Password: "longenough", ConfirmPassword: "nope"})
	require.Error(t, err)
	assert.Equal(t,
		"name is required; email is required; passwords do not match; you must agree to the terms",
		err.Error())
}

func TestProfileStore(t *testing.T) {
	s := NewStore()
	assert.Equal(t, "John Traveler", s.Profile().Name)

	p := s.Profile()
	p.Name = "  Jane Doe "
	p.Newsletter = true
	updated, err := s.Update(p)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.True(t, s.Profile().Newsletter)

	p.Email = "broken"
	_, err = s.Update(p)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "john@example.com", s.Profile().Email)
}
