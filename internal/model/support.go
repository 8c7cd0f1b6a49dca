package model

import "time"

// SupportStatusPending is the status of a freshly filed ticket.
const SupportStatusPending = "pending"

// FieldSupportUserID links a ticket to the account that filed it.
const FieldSupportUserID = "v_UserId"

// SupportRequest is a support ticket filed from the client.
type SupportRequest struct {
	UserID        string
	UserEmail     string
	UserName      string
	StudentID     string
	ServiceType   string
	IssueCategory string
	AtMerchant    string
	SelectedOrder string
	Subject       string
	Message       string
	Status        string
	Timestamp     time.Time
}

// Fields encodes the ticket for tbl_SupportRequests.
func (r SupportRequest) Fields() Fields {
	order := r.SelectedOrder
	if order == "" {
		order = "N/A"
	}
	return Fields{
		"v_UserEmail":      r.UserEmail,
		FieldSupportUserID: r.UserID,
		"v_StudentId":      r.StudentID,
		"v_UserName":       r.UserName,
		"v_ServiceType":    r.ServiceType,
		"v_IssueCategory":  r.IssueCategory,
		"v_AtMerchant":     r.AtMerchant,
		"v_SelectedOrder":  order,
		"v_Subject":        r.Subject,
		"v_Message":        r.Message,
		"v_Status":         r.Status,
		"v_Timestamp":      r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
