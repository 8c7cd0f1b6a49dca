package forms

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Options offered by the support form.
var (
	ServiceTypes    = []string{"Account", "Card Reload", "Payment/Refund", "Technical", "Others"}
	IssueCategories = []string{"Login/Access", "Wrong Charge", "Missing Reload", "Card Lost/Stolen", "Bug/Crash", "Others"}
	MerchantOptions = []string{"Yes", "No"}
)

// Support is the contact-support form.
type Support struct {
	Email         string `json:"email"`
	ServiceType   string `json:"serviceType"`
	IssueCategory string `json:"issueCategory"`
	AtMerchant    string `json:"atMerchant"`
	SelectedOrder string `json:"selectedOrder"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
}

// Validate requires everything except the related order.
func (s Support) Validate() error {
	trim(&s.Email, &s.Subject, &s.Message, &s.SelectedOrder)
	return wrap(validation.ValidateStruct(&s,
		validation.Field(&s.Email,
			validation.Required.Error("Please enter your email address"),
			is.EmailFormat,
		),
		validation.Field(&s.ServiceType,
			validation.Required.Error("Please select a service type"),
			validation.In(oneOf(ServiceTypes)...),
		),
		validation.Field(&s.IssueCategory,
			validation.Required.Error("Please select an issue category"),
			validation.In(oneOf(IssueCategories)...),
		),
		validation.Field(&s.AtMerchant,
			validation.Required.Error("Please select if you are at the merchant's store"),
			validation.In(oneOf(MerchantOptions)...),
		),
		validation.Field(&s.Subject, validation.Required.Error("Please enter a subject")),
		validation.Field(&s.Message, validation.Required.Error("Please describe your issue")),
	))
}
