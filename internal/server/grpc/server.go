// Package grpcserver exposes the Backend gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"github.com/and161185/barkcard/internal/api"
	"github.com/and161185/barkcard/internal/convert"
	"github.com/and161185/barkcard/internal/errs"
	"github.com/and161185/barkcard/internal/model"
	"github.com/and161185/barkcard/internal/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ api.BackendServer = (*Server)(nil)

// Server wires services into gRPC handlers. Callers are authenticated by AuthUnary/AuthStream.
type Server struct {
	auth service.AuthService
	docs service.DocumentService
}

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, docs service.DocumentService) *Server {
	return &Server{auth: auth, docs: docs}
}

// toStatus maps service errors to gRPC status codes.
func toStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrInvalidToken):
		return status.Error(codes.NotFound, "invalid or used verification token")
	case errors.Is(err, errs.ErrEmailNotVerified):
		return status.Error(codes.FailedPrecondition, "email not verified")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

// caller returns the authenticated identity. Record access requires a verified email.
func caller(ctx context.Context, verified bool) (model.Identity, error) {
	id, ok := IdentityFromCtx(ctx)
	if !ok {
		return model.Identity{}, status.Error(codes.Unauthenticated, "no auth")
	}
	if verified && !id.EmailVerified {
		return model.Identity{}, toStatus("", errs.ErrEmailNotVerified)
	}
	return id, nil
}

// --- Auth ---

// SignUp creates an unverified account.
func (s *Server) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password := convert.CredentialsFromStruct(req)
	id, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, toStatus("sign up", err)
	}
	return convert.IdentityToStruct(id), nil
}

// SignIn authenticates an account and returns an access token with the identity.
func (s *Server) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password := convert.CredentialsFromStruct(req)
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty email/password")
	}
	tok, id, err := s.auth.SignIn(ctx, email, password, remoteAddr(ctx))
	if err != nil {
		return nil, toStatus("sign in", err)
	}
	return convert.SessionToStruct(tok, id), nil
}

// Refresh issues a token reflecting the current account state.
func (s *Server) Refresh(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, false)
	if err != nil {
		return nil, err
	}
	tok, fresh, err := s.auth.Refresh(ctx, id.UserID)
	if err != nil {
		return nil, toStatus("refresh", err)
	}
	return convert.SessionToStruct(tok, fresh), nil
}

// VerifyEmail consumes a verification token.
func (s *Server) VerifyEmail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := convert.TokenFromStruct(req)
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "empty token")
	}
	id, err := s.auth.VerifyEmail(ctx, token)
	if err != nil {
		return nil, toStatus("verify email", err)
	}
	return convert.IdentityToStruct(id), nil
}

// --- Documents ---

// GetDocument returns a snapshot; missing records come back with exists=false.
func (s *Server) GetDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, true)
	if err != nil {
		return nil, err
	}
	collection, docID := convert.RefFromStruct(req)
	doc, err := s.docs.Get(ctx, id.UserID, collection, docID)
	if err != nil {
		return nil, toStatus("get document", err)
	}
	out, err := convert.DocumentToStruct(doc)
	return out, toStatus("encode document", err)
}

// UpdateDocument merges fields into an existing record.
func (s *Server) UpdateDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, true)
	if err != nil {
		return nil, err
	}
	w := convert.WriteFromStruct(req)
	if err := s.docs.Update(ctx, id.UserID, w.Collection, w.ID, w.Fields); err != nil {
		return nil, toStatus("update document", err)
	}
	return &structpb.Struct{}, nil
}

// SetDocument creates or merges a record.
func (s *Server) SetDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, true)
	if err != nil {
		return nil, err
	}
	w := convert.WriteFromStruct(req)
	if err := s.docs.Set(ctx, id.UserID, w.Collection, w.ID, w.Fields, w.Merge); err != nil {
		return nil, toStatus("set document", err)
	}
	return &structpb.Struct{}, nil
}

// AddDocument inserts a record under a generated id.
func (s *Server) AddDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, true)
	if err != nil {
		return nil, err
	}
	w := convert.WriteFromStruct(req)
	newID, err := s.docs.Add(ctx, id.UserID, w.Collection, w.Fields)
	if err != nil {
		return nil, toStatus("add document", err)
	}
	return convert.AddedToStruct(newID), nil
}

// QueryDocuments lists records matching an equality filter.
func (s *Server) QueryDocuments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := caller(ctx, true)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.Query(ctx, id.UserID, convert.QueryFromStruct(req))
	if err != nil {
		return nil, toStatus("query documents", err)
	}
	out, err := convert.DocumentsToStruct(docs)
	return out, toStatus("encode documents", err)
}

// WatchDocument streams the current snapshot and every later change.
func (s *Server) WatchDocument(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	id, err := caller(ctx, true)
	if err != nil {
		return err
	}
	collection, docID := convert.RefFromStruct(req)
	err = s.docs.Watch(ctx, id.UserID, collection, docID, func(doc model.Document) error {
		msg, err := convert.DocumentToStruct(doc)
		if err != nil {
			return err
		}
		return stream.Send(msg)
	})
	return toStatus("watch document", err)
}

// WatchQuery streams the query result and re-sends it after every change.
func (s *Server) WatchQuery(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	id, err := caller(ctx, true)
	if err != nil {
		return err
	}
	err = s.docs.WatchQuery(ctx, id.UserID, convert.QueryFromStruct(req), func(docs []model.Document) error {
		msg, err := convert.DocumentsToStruct(docs)
		if err != nil {
			return err
		}
		return stream.Send(msg)
	})
	return toStatus("watch query", err)
}
