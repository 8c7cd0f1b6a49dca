package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
)

// serverOwned lists tbl_User fields only the backend may write.
var serverOwned = []string{
	model.FieldBalance,
	model.FieldTotalIncome,
	model.FieldTotalExpenses,
	model.FieldRole,
	model.FieldCardUID,
	model.FieldNFCID,
	model.FieldCreatedAt,
}

func denied(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrPermissionDenied}, args...)...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrValidation}, args...)...)
}

// canRead allows reading only the caller's own profile record.
func canRead(caller, collection, id string) error {
	if collection == "" || id == "" {
		return invalid("collection and id are required")
	}
	if collection == model.CollectionUsers && id == caller {
		return nil
	}
	return denied("read %s/%s", collection, id)
}

// canWriteProfile checks a write into the caller's own profile record.
func canWriteProfile(caller, collection, id string, fields model.Fields) error {
	if collection == "" || id == "" {
		return invalid("collection and id are required")
	}
	if collection != model.CollectionUsers || id != caller {
		return denied("write %s/%s", collection, id)
	}
	for _, k := range serverOwned {
		if _, ok := fields[k]; ok {
			return denied("field %s is read-only", k)
		}
	}
	if v, ok := fields[model.FieldStatus]; ok && v != string(model.ProfileStatusDeactivated) {
		return denied("%s may only be set to %q", model.FieldStatus, model.ProfileStatusDeactivated)
	}
	return nil
}

// canAdd allows filing support tickets on the caller's behalf.
func canAdd(caller, collection string, fields model.Fields) error {
	if collection != model.CollectionSupportRequest {
		return denied("add to %s", collection)
	}
	if fields.String(model.FieldSupportUserID) != caller {
		return denied("%s must be the caller", model.FieldSupportUserID)
	}
	return nil
}

// canQuery allows listing transactions by the caller's own student id.
func (s *Documents) canQuery(ctx context.Context, caller string, q model.Query) error {
	if q.Collection != model.CollectionTransactions {
		return denied("query %s", q.Collection)
	}
	if q.Field != model.FieldTxStudentID || q.Value == "" {
		return denied("transactions must be filtered by %s", model.FieldTxStudentID)
	}
	own, err := s.repo.Get(ctx, model.CollectionUsers, caller)
	if errors.Is(err, errs.ErrNotFound) {
		return denied("no profile record")
	}
	if err != nil {
		return err
	}
	if own.Fields.String(model.FieldStudentID) != q.Value {
		return denied("student id does not belong to the caller")
	}
	return nil
}
