package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
)

func TestSignUp_Validate(t *testing.T) {
	t.Parallel()

	ok := SignUp{Email: " student@campus.edu ", Password: "Bark2024", Confirm: "Bark2024"}
	require.NoError(t, ok.Validate())

	cases := map[string]struct {
		form  SignUp
		field string
		msg   string
	}{
		"empty email": {SignUp{Password: "Bark2024", Confirm: "Bark2024"}, "email", "Please enter your email"},
		"bad email":   {SignUp{Email: "student", Password: "Bark2024", Confirm: "Bark2024"}, "email", "Please enter a valid email address"},
		"no password": {SignUp{Email: "a@b.edu"}, "password", "Password is required"},
		"too long":    {SignUp{Email: "a@b.edu", Password: "Aa1" + strings.Repeat("x", 22), Confirm: "Aa1" + strings.Repeat("x", 22)}, "password", "Password must be at most 24 characters"},
		"no upper":    {SignUp{Email: "a@b.edu", Password: "bark2024", Confirm: "bark2024"}, "password", "Password must contain at least one uppercase letter"},
		"no lower":    {SignUp{Email: "a@b.edu", Password: "BARK2024", Confirm: "BARK2024"}, "password", "Password must contain at least one lowercase letter"},
		"no digit":    {SignUp{Email: "a@b.edu", Password: "BarkCard", Confirm: "BarkCard"}, "password", "Password must contain at least one number"},
		"mismatch":    {SignUp{Email: "a@b.edu", Password: "Bark2024", Confirm: "Bark2025"}, "confirm", "Passwords do not match"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.form.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, errs.ErrValidation))
			require.Equal(t, tc.msg, FieldErrors(err)[tc.field])
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePassword("Abcdef12"))
	require.NoError(t, ValidatePassword("Aa1"+strings.Repeat("z", 21)))
	err := ValidatePassword("abc")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Contains(t, FieldErrors(err)["password"], "uppercase")
}

func validProfile() Profile {
	return Profile{
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		Mobile:        "0917 123 4567",
		StudentNumber: "2023-123456",
		Region:        "NCR",
		Province:      "Metro Manila",
		Municipality:  "Manila",
		Barangay:      "Sampaloc",
		ZipCode:       "1008",
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validProfile().Validate())

	p := validProfile()
	p.FirstName = "   "
	p.StudentNumber = "2023-12345678"
	p.Mobile = "12345"
	p.ZipCode = ""
	err := p.Validate()
	require.ErrorIs(t, err, errs.ErrValidation)

	fe := FieldErrors(err)
	require.Equal(t, "First name is required", fe["firstName"])
	require.Equal(t, "Format: YYYY-######", fe["studentNumber"])
	require.Equal(t, "Enter a valid mobile number", fe["mobile"])
	require.Equal(t, "Zip code is required", fe["zipcode"])
	require.NotContains(t, fe, "middleName")
}

func TestProfile_Fields(t *testing.T) {
	t.Parallel()

	p := validProfile()
	p.FirstName = " Juan "
	f := p.Fields("juan@campus.edu")

	require.Equal(t, "Juan", f[model.FieldFirstName])
	require.Equal(t, "+639171234567", f[model.FieldPhone])
	require.Equal(t, true, f[model.FieldProfileComplete])
	require.Equal(t, "juan@campus.edu", f[model.FieldUserEmail])
	require.NotContains(t, f, model.FieldMiddleName)
	require.NotContains(t, f, model.FieldBalance)
	require.NotContains(t, f, model.FieldStatus)
}

func TestSupport_Validate(t *testing.T) {
	t.Parallel()

	s := Support{
		Email:         "a@b.edu",
		ServiceType:   "Card Reload",
		IssueCategory: "Missing Reload",
		AtMerchant:    "No",
		Subject:       "Reload not credited",
		Message:       "Paid at the cashier yesterday.",
	}
	require.NoError(t, s.Validate())

	bad := s
	bad.ServiceType = "Refund please"
	bad.Message = "  "
	err := bad.Validate()
	require.ErrorIs(t, err, errs.ErrValidation)
	fe := FieldErrors(err)
	require.Contains(t, fe, "serviceType")
	require.Equal(t, "Please describe your issue", fe["message"])

	require.Nil(t, FieldErrors(nil))
	require.Nil(t, FieldErrors(errors.New("other")))
}
