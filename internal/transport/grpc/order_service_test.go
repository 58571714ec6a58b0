package grpcapi_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
	"github.com/vladislavdragonenkov/ordertracker/internal/storage/memory"
	"github.com/vladislavdragonenkov/ordertracker/internal/tracker"
	grpcapi "github.com/vladislavdragonenkov/ordertracker/internal/transport/grpc"
)

const bufSize = 1024 * 1024

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newTestServer(t *testing.T, orders grpcapi.OrderService) (*grpc.ClientConn, *grpcapi.Server) {
	t.Helper()

	listener := bufconn.Listen(bufSize)
	logger := loggerForTests()
	server := grpcapi.NewServer(grpcapi.NewOrderTrackerService(orders, logger), prometheus.NewRegistry(), logger)

	go func() {
		_ = server.Serve(listener)
	}()

	dialer := func(context.Context, string) (net.Conn, error) {
		return listener.Dial()
	}
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})
	return conn, server
}

func newTrackerClient(t *testing.T) *grpcapi.Client {
	t.Helper()

	tr, err := tracker.New(memory.NewOrderStorage())
	require.NoError(t, err)
	conn, _ := newTestServer(t, tr)
	return grpcapi.NewClient(conn)
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func widget(id string) map[string]any {
	return map[string]any{"order_id": id, "item_name": "Widget", "quantity": 2, "customer_id": "C1"}
}

func TestOrderTracker_Lifecycle(t *testing.T) {
	client := newTrackerClient(t)
	ctx := context.Background()

	created, err := client.AddOrder(ctx, mustStruct(t, widget("A1")))
	require.NoError(t, err)
	assert.Equal(t, domain.Order{
		OrderID: "A1", ItemName: "Widget", Quantity: 2, CustomerID: "C1", Status: domain.OrderStatusPending,
	}, grpcapi.OrderFromStruct(created))

	got, err := client.GetOrder(ctx, mustStruct(t, map[string]any{"order_id": "A1"}))
	require.NoError(t, err)
	assert.Equal(t, grpcapi.OrderFromStruct(created), grpcapi.OrderFromStruct(got))

	updated, err := client.UpdateOrderStatus(ctx, mustStruct(t, map[string]any{"order_id": "A1", "new_status": "shipped"}))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, grpcapi.OrderFromStruct(updated).Status)

	list, err := client.ListOrders(ctx, mustStruct(t, map[string]any{"status": "shipped"}))
	require.NoError(t, err)
	orders := list.GetFields()["orders"].GetListValue().GetValues()
	require.Len(t, orders, 1)
	assert.Equal(t, "A1", grpcapi.OrderFromStruct(orders[0].GetStructValue()).OrderID)

	empty, err := client.ListOrders(ctx, mustStruct(t, map[string]any{"status": "pending"}))
	require.NoError(t, err)
	assert.Empty(t, empty.GetFields()["orders"].GetListValue().GetValues())
}

func TestOrderTracker_ErrorCodes(t *testing.T) {
	client := newTrackerClient(t)
	ctx := context.Background()

	_, err := client.AddOrder(ctx, mustStruct(t, widget("A1")))
	require.NoError(t, err)

	fractional := widget("B1")
	fractional["quantity"] = 1.5
	badStatus := widget("B2")
	badStatus["status"] = "lost"

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"duplicate", func() error { _, err := client.AddOrder(ctx, mustStruct(t, widget("A1"))); return err }, codes.AlreadyExists},
		{"missing fields", func() error { _, err := client.AddOrder(ctx, mustStruct(t, map[string]any{})); return err }, codes.InvalidArgument},
		{"fractional quantity", func() error { _, err := client.AddOrder(ctx, mustStruct(t, fractional)); return err }, codes.InvalidArgument},
		{"invalid status on add", func() error { _, err := client.AddOrder(ctx, mustStruct(t, badStatus)); return err }, codes.InvalidArgument},
		{"get missing", func() error {
			_, err := client.GetOrder(ctx, mustStruct(t, map[string]any{"order_id": "ghost"}))
			return err
		}, codes.NotFound},
		{"update missing", func() error {
			_, err := client.UpdateOrderStatus(ctx, mustStruct(t, map[string]any{"order_id": "ghost", "new_status": "bogus"}))
			return err
		}, codes.NotFound},
		{"update invalid status", func() error {
			_, err := client.UpdateOrderStatus(ctx, mustStruct(t, map[string]any{"order_id": "A1", "status": "bogus"}))
			return err
		}, codes.InvalidArgument},
		{"list invalid status", func() error {
			_, err := client.ListOrders(ctx, mustStruct(t, map[string]any{"status": "bogus"}))
			return err
		}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

type brokenService struct{}

func (brokenService) AddOrder(context.Context, domain.NewOrder) (domain.Order, error) {
	return domain.Order{}, errors.New("boom")
}

func (brokenService) GetOrderByID(context.Context, string) (domain.Order, bool, error) {
	return domain.Order{}, false, errors.New("boom")
}

func (brokenService) UpdateOrderStatus(context.Context, string, string) (domain.Order, error) {
	return domain.Order{}, errors.New("boom")
}

func (brokenService) ListOrders(context.Context, string) ([]domain.Order, error) {
	return nil, errors.New("boom")
}

func TestOrderTracker_InternalErrorIsMasked(t *testing.T) {
	conn, _ := newTestServer(t, brokenService{})
	client := grpcapi.NewClient(conn)

	_, err := client.ListOrders(context.Background(), mustStruct(t, map[string]any{}))
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())
}

func TestServer_HealthService(t *testing.T) {
	tr, err := tracker.New(memory.NewOrderStorage())
	require.NoError(t, err)
	conn, server := newTestServer(t, tr)
	healthClient := healthpb.NewHealthClient(conn)

	resp, err := healthClient.Check(context.Background(), &healthpb.HealthCheckRequest{Service: grpcapi.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	server.MarkNotServing()
	resp, err = healthClient.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestServer_ReflectionDescribesService(t *testing.T) {
	tr, err := tracker.New(memory.NewOrderStorage())
	require.NoError(t, err)
	conn, _ := newTestServer(t, tr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := reflectionpb.NewServerReflectionClient(conn).ServerReflectionInfo(ctx)
	require.NoError(t, err)

	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{},
	}))
	listed, err := stream.Recv()
	require.NoError(t, err)
	var names []string
	for _, svc := range listed.GetListServicesResponse().GetService() {
		names = append(names, svc.GetName())
	}
	assert.Contains(t, names, grpcapi.ServiceName)

	require.NoError(t, stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_FileContainingSymbol{
			FileContainingSymbol: grpcapi.ServiceName,
		},
	}))
	described, err := stream.Recv()
	require.NoError(t, err)
	require.Nil(t, described.GetErrorResponse())

	var file *descriptorpb.FileDescriptorProto
	for _, raw := range described.GetFileDescriptorResponse().GetFileDescriptorProto() {
		candidate := new(descriptorpb.FileDescriptorProto)
		require.NoError(t, proto.Unmarshal(raw, candidate))
		if candidate.GetName() == grpcapi.ProtoFile {
			file = candidate
		}
	}
	require.NotNil(t, file, "service file must be returned")
	require.Len(t, file.GetService(), 1)

	methods := map[string]string{}
	for _, m := range file.GetService()[0].GetMethod() {
		methods[m.GetName()] = m.GetInputType()
	}
	assert.Equal(t, map[string]string{
		"AddOrder":          ".google.protobuf.Struct",
		"GetOrder":          ".google.protobuf.Struct",
		"UpdateOrderStatus": ".google.protobuf.Struct",
		"ListOrders":        ".google.protobuf.Struct",
	}, methods)
	require.NoError(t, stream.CloseSend())
}
