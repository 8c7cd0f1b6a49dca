// Package forms validates user-entered forms shared by the client screens and the backend.
//
// Every Validate method returns nil or an error wrapping both errs.ErrValidation and
// the ozzo validation.Errors map keyed by field name.
package forms

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/and161185/barkcard/internal/errs"
)

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errs.ErrValidation, err)
}

func oneOf(opts []string) []any {
	out := make([]any, len(opts))
	for i, o := range opts {
		out[i] = o
	}
	return out
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// FieldErrors extracts per-field messages from a Validate error.
func FieldErrors(err error) map[string]string {
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for k, v := range ve {
		if v != nil {
			out[k] = v.Error()
		}
	}
	return out
}
