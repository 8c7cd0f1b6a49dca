package remote

import (
	"fmt"

	"github.com/and161185/barkcard/internal/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fromStatus maps gRPC status codes back to errs sentinels, keeping the server message.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		sentinel = errs.ErrValidation
	case codes.Unauthenticated:
		sentinel = errs.ErrUnauthorized
	case codes.ResourceExhausted:
		sentinel = errs.ErrRateLimited
	case codes.AlreadyExists:
		sentinel = errs.ErrAlreadyExists
	case codes.PermissionDenied:
		sentinel = errs.ErrPermissionDenied
	case codes.NotFound:
		sentinel = errs.ErrNotFound
	case codes.FailedPrecondition:
		sentinel = errs.ErrEmailNotVerified
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
