package forms

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxPasswordLength bounds passwords accepted at sign-up.
const MaxPasswordLength = 24

// SignUp is the create-account form.
type SignUp struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// Validate checks the email format, the password policy and the confirmation.
func (s SignUp) Validate() error {
	s.Email = strings.TrimSpace(s.Email)
	return wrap(validation.ValidateStruct(&s,
		validation.Field(&s.Email,
			validation.Required.Error("Please enter your email"),
			is.EmailFormat.Error("Please enter a valid email address"),
		),
		validation.Field(&s.Password, validation.By(passwordRule)),
		validation.Field(&s.Confirm, validation.By(func(v any) error {
			if v.(string) != s.Password {
				return errors.New("Passwords do not match")
			}
			return nil
		})),
	))
}

// ValidatePassword applies the password policy alone.
func ValidatePassword(pwd string) error {
	if err := passwordRule(pwd); err != nil {
		return wrap(validation.Errors{"password": err})
	}
	return nil
}

func passwordRule(v any) error {
	pwd, _ := v.(string)
	if pwd == "" {
		return errors.New("Password is required")
	}
	if len([]rune(pwd)) > MaxPasswordLength {
		return fmt.Errorf("Password must be at most %d characters", MaxPasswordLength)
	}
	var upper, lower, digit bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return errors.New("Password must contain at least one uppercase letter")
	case !lower:
		return errors.New("Password must contain at least one lowercase letter")
	case !digit:
		return errors.New("Password must contain at least one number")
	}
	return nil
}
