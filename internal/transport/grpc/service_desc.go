package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName: полное имя gRPC-сервиса трекера.
const ServiceName = "ordertracker.v1.OrderTracker"

const (
	methodAddOrder          = "AddOrder"
	methodGetOrder          = "GetOrder"
	methodUpdateOrderStatus = "UpdateOrderStatus"
	methodListOrders        = "ListOrders"
)

// OrderTrackerServer: серверная сторона сервиса. Запросы и ответы передаются
// как google.protobuf.Struct с теми же полями, что и в REST API.
type OrderTrackerServer interface {
	AddOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc описывает сервис для grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderTrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodAddOrder, Handler: unaryHandler(methodAddOrder, OrderTrackerServer.AddOrder)},
		{MethodName: methodGetOrder, Handler: unaryHandler(methodGetOrder, OrderTrackerServer.GetOrder)},
		{MethodName: methodUpdateOrderStatus, Handler: unaryHandler(methodUpdateOrderStatus, OrderTrackerServer.UpdateOrderStatus)},
		{MethodName: methodListOrders, Handler: unaryHandler(methodListOrders, OrderTrackerServer.ListOrders)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

// RegisterOrderTrackerServer регистрирует реализацию на сервере.
func RegisterOrderTrackerServer(registrar grpc.ServiceRegistrar, srv OrderTrackerServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

type unaryCall func(OrderTrackerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderTrackerServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderTrackerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client: клиент сервиса поверх любого grpc.ClientConnInterface.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient создаёт клиент.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAddOrder, in, opts...)
}

func (c *Client) GetOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetOrder, in, opts...)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodUpdateOrderStatus, in, opts...)
}

func (c *Client) ListOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListOrders, in, opts...)
}
