// Package dashboardv1 описывает внутренний gRPC-сервис dashboard.internal.v1.Dashboard.
//
// Сообщения построены на well-known типах protobuf: токен передаётся как
// StringValue, пользователь и запись учёта как Struct с полями в camelCase,
// совпадающими с JSON-ответами HTTP API.
package dashboardv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "dashboard.internal.v1.Dashboard"

	ValidateSessionMethod = "/" + ServiceName + "/ValidateSession"
	RecordUsageMethod     = "/" + ServiceName + "/RecordUsage"
)

// DashboardServer серверная часть сервиса.
type DashboardServer interface {
	// ValidateSession возвращает пользователя по токену сессии или Unauthenticated.
	ValidateSession(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
	// RecordUsage принимает {userId, serviceId, month, delta} и возвращает запись учёта.
	RecordUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDashboardServer регистрирует реализацию на gRPC-сервере.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc дескриптор сервиса.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateSession", Handler: validateSessionHandler},
		{MethodName: "RecordUsage", Handler: recordUsageHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func validateSessionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).ValidateSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateSessionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).ValidateSession(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func recordUsageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).RecordUsage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RecordUsageMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).RecordUsage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardClient клиентская часть сервиса.
type DashboardClient interface {
	ValidateSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	RecordUsage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dashboardClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardClient создаёт клиента поверх соединения.
func NewDashboardClient(cc grpc.ClientConnInterface) DashboardClient {
	return &dashboardClient{cc: cc}
}

func (c *dashboardClient) ValidateSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateSessionMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) RecordUsage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordUsageMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
