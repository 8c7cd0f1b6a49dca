package forms

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nyaruka/phonenumbers"

	"github.com/and161185/barkcard/internal/model"
)

// phoneRegion is the default region for numbers entered without a country code.
const phoneRegion = "PH"

var studentNumber = regexp.MustCompile(`^\d{4}-\d{6}$`)

// Profile is the profile-completion form.
type Profile struct {
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName"`
	LastName      string `json:"lastName"`
	Mobile        string `json:"mobile"`
	StudentNumber string `json:"studentNumber"`
	Region        string `json:"region"`
	Province      string `json:"province"`
	Municipality  string `json:"municipality"`
	Barangay      string `json:"barangay"`
	ZipCode       string `json:"zipcode"`
}

// Normalize trims every field.
func (p *Profile) Normalize() {
	trim(&p.FirstName, &p.MiddleName, &p.LastName, &p.Mobile, &p.StudentNumber,
		&p.Region, &p.Province, &p.Municipality, &p.Barangay, &p.ZipCode)
}

// Validate requires every field but the middle name.
func (p Profile) Validate() error {
	p.Normalize()
	return wrap(validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required.Error("First name is required")),
		validation.Field(&p.LastName, validation.Required.Error("Last name is required")),
		validation.Field(&p.Mobile,
			validation.Required.Error("Mobile number is required"),
			validation.By(mobileRule),
		),
		validation.Field(&p.StudentNumber,
			validation.Required.Error("Student number is required"),
			validation.Match(studentNumber).Error("Format: YYYY-######"),
		),
		validation.Field(&p.Region, validation.Required.Error("Region is required")),
		validation.Field(&p.Province, validation.Required.Error("Province is required")),
		validation.Field(&p.Municipality, validation.Required.Error("Municipality is required")),
		validation.Field(&p.Barangay, validation.Required.Error("Barangay is required")),
		validation.Field(&p.ZipCode, validation.Required.Error("Zip code is required")),
	))
}

// Fields encodes a validated form as a tbl_User merge that marks the profile complete.
func (p Profile) Fields(email string) model.Fields {
	p.Normalize()
	f := model.Fields{
		model.FieldFirstName:       p.FirstName,
		model.FieldLastName:        p.LastName,
		model.FieldPhone:           formatMobile(p.Mobile),
		model.FieldStudentID:       p.StudentNumber,
		model.FieldRegion:          p.Region,
		model.FieldProvince:        p.Province,
		model.FieldMunicipality:    p.Municipality,
		model.FieldBarangay:        p.Barangay,
		model.FieldZipCode:         p.ZipCode,
		model.FieldProfileComplete: true,
	}
	if p.MiddleName != "" {
		f[model.FieldMiddleName] = p.MiddleName
	}
	if email != "" {
		f[model.FieldUserEmail] = email
	}
	return f
}

func mobileRule(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	num, err := phonenumbers.Parse(s, phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("Enter a valid mobile number")
	}
	return nil
}

func formatMobile(s string) string {
	num, err := phonenumbers.Parse(s, phoneRegion)
	if err != nil {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
