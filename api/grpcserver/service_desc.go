package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "prte.routed.Router"

// RouterServer is the server side of prte.routed.Router. Messages are
// protobuf well-known types, so no generated code is needed.
type RouterServer interface {
	GetRoute(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.UInt64Value, error)
	RouteLost(context.Context, *wrapperspb.UInt64Value) (*emptypb.Empty, error)
	NumRoutes(context.Context, *emptypb.Empty) (*wrapperspb.UInt32Value, error)
	Generation(context.Context, *emptypb.Empty) (*wrapperspb.UInt64Value, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RouterServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetRoute", RouterServer.GetRoute),
		unary("RouteLost", RouterServer.RouteLost),
		unary("NumRoutes", RouterServer.NumRoutes),
		unary("Generation", RouterServer.Generation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "prte/routed.proto",
}

func Register(s grpc.ServiceRegistrar, srv RouterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

func unary[Req, Resp any](name string, call func(RouterServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	method := fullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RouterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RouterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
