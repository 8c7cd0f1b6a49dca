// Package client implements the screen actions of the BarkCard app on top of
// the document store: profile completion, account deactivation, transaction
// history and support tickets.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/forms"
	"github.com/and161185/barkcard/internal/model"
	"go.uber.org/zap"
)

// DeactivationConfirmation must be typed to deactivate an account.
const DeactivationConfirmation = "AGREED"

// Store is the subset of the document store the screens write through.
type Store interface {
	Set(ctx context.Context, collection, id string, fields model.Fields, merge bool) error
	Update(ctx context.Context, collection, id string, fields model.Fields) error
	Add(ctx context.Context, collection string, fields model.Fields) (string, error)
	Query(ctx context.Context, q model.Query) ([]model.Document, error)
	WatchQuery(ctx context.Context, q model.Query,
		onNext func([]model.Document), onError func(error)) (func(), error)
}

// Client runs screen actions for the signed-in user.
type Client struct {
	docs Store
	log  *zap.Logger
	now  func() time.Time
}

// New builds a Client.
func New(docs Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{docs: docs, log: log, now: time.Now}
}

// CompleteProfile validates the form and merges it into the user's record
// with the completeness flag set. The live profile subscription picks the
// change up on its own.
func (c *Client) CompleteProfile(ctx context.Context, id model.Identity, form forms.Profile) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := c.docs.Set(ctx, model.CollectionUsers, id.UserID, form.Fields(id.Email), true); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	c.log.Info("profile completed", zap.String("user_id", id.UserID))
	return nil
}

// Deactivate marks the account deactivated once the user typed the
// confirmation word. The session is torn down by the next profile snapshot.
func (c *Client) Deactivate(ctx context.Context, id model.Identity, confirmation string) error {
	if !strings.EqualFold(strings.TrimSpace(confirmation), DeactivationConfirmation) {
		return fmt.Errorf("%w: type %s to confirm", errs.ErrValidation, DeactivationConfirmation)
	}
	fields := model.Fields{model.FieldStatus: string(model.ProfileStatusDeactivated)}
	if err := c.docs.Update(ctx, model.CollectionUsers, id.UserID, fields); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	c.log.Info("account deactivated", zap.String("user_id", id.UserID))
	return nil
}

// SubmitSupport files a ticket and returns its id.
func (c *Client) SubmitSupport(ctx context.Context, id model.Identity, profile model.Profile, form forms.Support) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	studentID := profile.StudentID
	if studentID == "" {
		studentID = "N/A"
	}
	req := model.SupportRequest{
		UserID:        id.UserID,
		UserEmail:     strings.TrimSpace(form.Email),
		UserName:      profile.DisplayName,
		StudentID:     studentID,
		ServiceType:   form.ServiceType,
		IssueCategory: form.IssueCategory,
		AtMerchant:    form.AtMerchant,
		SelectedOrder: strings.TrimSpace(form.SelectedOrder),
		Subject:       strings.TrimSpace(form.Subject),
		Message:       strings.TrimSpace(form.Message),
		Status:        model.SupportStatusPending,
		Timestamp:     c.now(),
	}
	ticket, err := c.docs.Add(ctx, model.CollectionSupportRequest, req.Fields())
	if err != nil {
		return "", fmt.Errorf("submit support request: %w", err)
	}
	c.log.Info("support request filed", zap.String("user_id", id.UserID), zap.String("ticket", ticket))
	return ticket, nil
}
