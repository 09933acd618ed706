package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name declared in
// proto/adapter/v1/adaptation.proto.
const ServiceName = "adapter.v1.AdaptationService"

// Method names of the adaptation service. Every request and response is a
// google.protobuf.Struct.
const (
	MethodProcessMaterial  = "ProcessMaterial"
	MethodEnqueueBatch     = "EnqueueBatch"
	MethodGetBatchStatus   = "GetBatchStatus"
	MethodRegisterMaterial = "RegisterMaterial"
	MethodRegisterDir      = "RegisterDirectory"
	MethodCreateProfile    = "CreateProfile"
	MethodListProfiles     = "ListProfiles"
	MethodGetDownloadURL   = "GetDownloadURL"
	MethodExportHistory    = "ExportHistory"
)

// AdaptationServer is the server API for adapter.v1.AdaptationService.
type AdaptationServer interface {
	ProcessMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EnqueueBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBatchStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProfiles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDownloadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAdaptationServer can be embedded so that a server keeps
// compiling when rpcs are added.
type UnimplementedAdaptationServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAdaptationServer) ProcessMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodProcessMaterial)
}
func (UnimplementedAdaptationServer) EnqueueBatch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodEnqueueBatch)
}
func (UnimplementedAdaptationServer) GetBatchStatus(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetBatchStatus)
}
func (UnimplementedAdaptationServer) RegisterMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRegisterMaterial)
}
func (UnimplementedAdaptationServer) RegisterDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodRegisterDir)
}
func (UnimplementedAdaptationServer) CreateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodCreateProfile)
}
func (UnimplementedAdaptationServer) ListProfiles(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodListProfiles)
}
func (UnimplementedAdaptationServer) GetDownloadURL(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetDownloadURL)
}
func (UnimplementedAdaptationServer) ExportHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodExportHistory)
}

type unaryCall func(AdaptationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AdaptationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AdaptationServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AdaptationServiceDesc is the grpc.ServiceDesc for adapter.v1.AdaptationService.
var AdaptationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdaptationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodProcessMaterial, AdaptationServer.ProcessMaterial),
		unary(MethodEnqueueBatch, AdaptationServer.EnqueueBatch),
		unary(MethodGetBatchStatus, AdaptationServer.GetBatchStatus),
		unary(MethodRegisterMaterial, AdaptationServer.RegisterMaterial),
		unary(MethodRegisterDir, AdaptationServer.RegisterDirectory),
		unary(MethodCreateProfile, AdaptationServer.CreateProfile),
		unary(MethodListProfiles, AdaptationServer.ListProfiles),
		unary(MethodGetDownloadURL, AdaptationServer.GetDownloadURL),
		unary(MethodExportHistory, AdaptationServer.ExportHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adapter/v1/adaptation.proto",
}

func RegisterAdaptationServer(s grpc.ServiceRegistrar, srv AdaptationServer) {
	s.RegisterService(&AdaptationServiceDesc, srv)
}

// AdaptationClient calls the service over any client connection.
type AdaptationClient struct {
	cc grpc.ClientConnInterface
}

func NewAdaptationClient(cc grpc.ClientConnInterface) *AdaptationClient {
	return &AdaptationClient{cc: cc}
}

// Call invokes method with in and returns the response struct.
func (c *AdaptationClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdaptationClient) ProcessMaterial(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodProcessMaterial, in, opts...)
}

func (c *AdaptationClient) EnqueueBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodEnqueueBatch, in, opts...)
}

func (c *AdaptationClient) GetBatchStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetBatchStatus, in, opts...)
}

func (c *AdaptationClient) RegisterMaterial(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodRegisterMaterial, in, opts...)
}

func (c *AdaptationClient) RegisterDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodRegisterDir, in, opts...)
}

func (c *AdaptationClient) CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodCreateProfile, in, opts...)
}

func (c *AdaptationClient) ListProfiles(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodListProfiles, in, opts...)
}

func (c *AdaptationClient) GetDownloadURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetDownloadURL, in, opts...)
}

func (c *AdaptationClient) ExportHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodExportHistory, in, opts...)
}
