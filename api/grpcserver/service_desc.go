package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service speaks protobuf well-known types only, so no generated code
// is needed on either side.
const (
	ServiceName = "ordmap.v1.OrderedMap"

	methodPut    = "/" + ServiceName + "/Put"
	methodGet    = "/" + ServiceName + "/Get"
	methodDelete = "/" + ServiceName + "/Delete"
	methodRange  = "/" + ServiceName + "/Range"
	methodStats  = "/" + ServiceName + "/Stats"
)

// OrderedMapServer is the server API for the ordmap.v1.OrderedMap service.
type OrderedMapServer interface {
	// Put takes {key, value} and returns whether the key was new.
	Put(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	// Get returns the value of a key, NotFound if absent.
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Delete returns whether the key was present.
	Delete(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	// Range takes {from, to, limit, reverse} and returns a list of {key, value}.
	Range(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	// Stats returns {size, height, black_height, last_seq}.
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterOrderedMapServer(s grpc.ServiceRegistrar, srv OrderedMapServer) {
	s.RegisterService(&OrderedMapServiceDesc, srv)
}

var OrderedMapServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderedMapServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Put",
			Handler:    unaryHandler(methodPut, newMsg[structpb.Struct], OrderedMapServer.Put),
		},
		{
			MethodName: "Get",
			Handler:    unaryHandler(methodGet, newMsg[wrapperspb.StringValue], OrderedMapServer.Get),
		},
		{
			MethodName: "Delete",
			Handler:    unaryHandler(methodDelete, newMsg[wrapperspb.StringValue], OrderedMapServer.Delete),
		},
		{
			MethodName: "Range",
			Handler:    unaryHandler(methodRange, newMsg[structpb.Struct], OrderedMapServer.Range),
		},
		{
			MethodName: "Stats",
			Handler:    unaryHandler(methodStats, newMsg[emptypb.Empty], OrderedMapServer.Stats),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ordmap/v1/ordered_map",
}

func newMsg[T any]() *T { return new(T) }

func unaryHandler[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(OrderedMapServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(OrderedMapServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
