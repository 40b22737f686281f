package service

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9_-]*[a-zA-Z0-9])?$`)

type registerCredentials struct {
	Username string `validate:"required,min=3,max=32,username"`
	Password string `validate:"required,min=8,max=128,password_strength"`
}

// Login only rejects empty or oversized fields: anything else is decided
// by the credential check, so it cannot reveal which names are valid.
type loginCredentials struct {
	Username string `validate:"required,max=32"`
	Password string `validate:"required,max=128"`
}

type CredentialValidator struct {
	validate *validator.Validate
}

func NewCredentialValidator() *CredentialValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return hasLetterAndDigit(fl.Field().String())
	})
	return &CredentialValidator{validate: v}
}

func (cv *CredentialValidator) ValidateRegistration(username, password string) error {
	return cv.check(registerCredentials{Username: username, Password: password})
}

func (cv *CredentialValidator) ValidateLogin(username, password string) error {
	return cv.check(loginCredentials{Username: username, Password: password})
}

func (cv *CredentialValidator) check(input any) error {
	err := cv.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrValidation.WithCause(err)
	}
	return ErrValidation.WithMessage(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := "username"
	minLen, maxLen := constants.UsernameMinLength, constants.UsernameMaxLength
	if fe.Field() == "Password" {
		field = "password"
		minLen, maxLen = constants.PasswordMinLength, constants.PasswordMaxLength
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d characters", field, minLen, maxLen)
	case "username":
		return "username may contain only latin letters, digits, '_' and '-', and must start and end with a letter or digit"
	case "password_strength":
		return "password must contain at least one letter and one digit"
	}
	return fmt.Sprintf("%s is invalid", field)
}

func hasLetterAndDigit(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}
