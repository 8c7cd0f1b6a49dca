// Package api declares the barkcard.v1.Backend gRPC service.
//
// Messages are google.protobuf.Struct values; internal/convert owns their
// layout. The descriptors below follow what protoc-gen-go-grpc emits.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "barkcard.v1.Backend"

// Full method names.
const (
	Backend_SignUp_FullMethodName         = "/barkcard.v1.Backend/SignUp"
	Backend_SignIn_FullMethodName         = "/barkcard.v1.Backend/SignIn"
	Backend_Refresh_FullMethodName        = "/barkcard.v1.Backend/Refresh"
	Backend_VerifyEmail_FullMethodName    = "/barkcard.v1.Backend/VerifyEmail"
	Backend_GetDocument_FullMethodName    = "/barkcard.v1.Backend/GetDocument"
	Backend_UpdateDocument_FullMethodName = "/barkcard.v1.Backend/UpdateDocument"
	Backend_SetDocument_FullMethodName    = "/barkcard.v1.Backend/SetDocument"
	Backend_AddDocument_FullMethodName    = "/barkcard.v1.Backend/AddDocument"
	Backend_QueryDocuments_FullMethodName = "/barkcard.v1.Backend/QueryDocuments"
	Backend_WatchDocument_FullMethodName  = "/barkcard.v1.Backend/WatchDocument"
	Backend_WatchQuery_FullMethodName     = "/barkcard.v1.Backend/WatchQuery"
)

// PublicMethods can be called without a bearer token.
var PublicMethods = map[string]bool{
	Backend_SignUp_FullMethodName:      true,
	Backend_SignIn_FullMethodName:      true,
	Backend_VerifyEmail_FullMethodName: true,
}

// BackendServer is the server API for the Backend service.
type BackendServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QueryDocuments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchDocument(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
	WatchQuery(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterBackendServer registers srv on s.
func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&Backend_ServiceDesc, srv)
}

type unaryCall func(BackendServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BackendServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BackendServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type streamCall func(BackendServer, *structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error

func streamHandler(call streamCall) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		m := new(structpb.Struct)
		if err := stream.RecvMsg(m); err != nil {
			return err
		}
		return call(srv.(BackendServer), m, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
	}
}

// Backend_ServiceDesc is the grpc.ServiceDesc for the Backend service.
var Backend_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(Backend_SignUp_FullMethodName, BackendServer.SignUp)},
		{MethodName: "SignIn", Handler: unaryHandler(Backend_SignIn_FullMethodName, BackendServer.SignIn)},
		{MethodName: "Refresh", Handler: unaryHandler(Backend_Refresh_FullMethodName, BackendServer.Refresh)},
		{MethodName: "VerifyEmail", Handler: unaryHandler(Backend_VerifyEmail_FullMethodName, BackendServer.VerifyEmail)},
		{MethodName: "GetDocument", Handler: unaryHandler(Backend_GetDocument_FullMethodName, BackendServer.GetDocument)},
		{MethodName: "UpdateDocument", Handler: unaryHandler(Backend_UpdateDocument_FullMethodName, BackendServer.UpdateDocument)},
		{MethodName: "SetDocument", Handler: unaryHandler(Backend_SetDocument_FullMethodName, BackendServer.SetDocument)},
		{MethodName: "AddDocument", Handler: unaryHandler(Backend_AddDocument_FullMethodName, BackendServer.AddDocument)},
		{MethodName: "QueryDocuments", Handler: unaryHandler(Backend_QueryDocuments_FullMethodName, BackendServer.QueryDocuments)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchDocument", Handler: streamHandler(BackendServer.WatchDocument), ServerStreams: true},
		{StreamName: "WatchQuery", Handler: streamHandler(BackendServer.WatchQuery), ServerStreams: true},
	},
	Metadata: "barkcard/v1/backend.proto",
}

// BackendClient is the client API for the Backend service.
type BackendClient struct {
	cc grpc.ClientConnInterface
}

// NewBackendClient wraps a connection.
func NewBackendClient(cc grpc.ClientConnInterface) *BackendClient {
	return &BackendClient{cc: cc}
}

func (c *BackendClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BackendClient) SignUp(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_SignUp_FullMethodName, in, opts)
}

func (c *BackendClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_SignIn_FullMethodName, in, opts)
}

func (c *BackendClient) Refresh(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_Refresh_FullMethodName, in, opts)
}

func (c *BackendClient) VerifyEmail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_VerifyEmail_FullMethodName, in, opts)
}

func (c *BackendClient) GetDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_GetDocument_FullMethodName, in, opts)
}

func (c *BackendClient) UpdateDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_UpdateDocument_FullMethodName, in, opts)
}

func (c *BackendClient) SetDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_SetDocument_FullMethodName, in, opts)
}

func (c *BackendClient) AddDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_AddDocument_FullMethodName, in, opts)
}

func (c *BackendClient) QueryDocuments(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Backend_QueryDocuments_FullMethodName, in, opts)
}

func (c *BackendClient) stream(ctx context.Context, desc *grpc.StreamDesc, method string, in *structpb.Struct, opts []grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *BackendClient) WatchDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	return c.stream(ctx, &Backend_ServiceDesc.Streams[0], Backend_WatchDocument_FullMethodName, in, opts)
}

func (c *BackendClient) WatchQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	return c.stream(ctx, &Backend_ServiceDesc.Streams[1], Backend_WatchQuery_FullMethodName, in, opts)
}
