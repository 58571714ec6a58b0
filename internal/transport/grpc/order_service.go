// Package grpcapi отдаёт операции трекера по gRPC.
package grpcapi

import (
	"context"
	"errors"
	"math"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// OrderService: операции трекера, которые нужны gRPC-слою.
type OrderService interface {
	AddOrder(ctx context.Context, input domain.NewOrder) (domain.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (domain.Order, bool, error)
	UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (domain.Order, error)
	ListOrders(ctx context.Context, status string) ([]domain.Order, error)
}

// OrderTrackerService реализует OrderTrackerServer поверх трекера.
type OrderTrackerService struct {
	orders OrderService
	logger *log.Entry
}

// NewOrderTrackerService конструирует сервис.
func NewOrderTrackerService(orders OrderService, logger *log.Entry) *OrderTrackerService {
	if logger == nil {
		logger = log.New().WithField("component", "grpc-api")
	}
	return &OrderTrackerService{orders: orders, logger: logger}
}

// AddOrder создаёт заказ из полей order_id, item_name, quantity, customer_id, status.
func (s *OrderTrackerService) AddOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	order, err := s.orders.AddOrder(ctx, domain.NewOrder{
		OrderID:    stringField(req, "order_id"),
		ItemName:   stringField(req, "item_name"),
		Quantity:   intField(req, "quantity"),
		CustomerID: stringField(req, "customer_id"),
		Status:     stringField(req, "status"),
	})
	if err != nil {
		return nil, s.toStatus(methodAddOrder, err)
	}
	return orderToStruct(order)
}

// GetOrder возвращает заказ по order_id или NotFound.
func (s *OrderTrackerService) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID := stringField(req, "order_id")

	order, found, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, s.toStatus(methodGetOrder, err)
	}
	if !found {
		return nil, status.Error(codes.NotFound, (&domain.NotFoundError{OrderID: orderID}).Error())
	}
	return orderToStruct(order)
}

// UpdateOrderStatus меняет статус; новое значение берётся из new_status или status.
func (s *OrderTrackerService) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	newStatus := stringField(req, "new_status")
	if _, ok := req.GetFields()["new_status"]; !ok {
		newStatus = stringField(req, "status")
	}

	order, err := s.orders.UpdateOrderStatus(ctx, stringField(req, "order_id"), newStatus)
	if err != nil {
		return nil, s.toStatus(methodUpdateOrderStatus, err)
	}
	return orderToStruct(order)
}

// ListOrders возвращает {"orders": [...]}, при наличии поля status: только с этим статусом.
func (s *OrderTrackerService) ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orders, err := s.orders.ListOrders(ctx, stringField(req, "status"))
	if err != nil {
		return nil, s.toStatus(methodListOrders, err)
	}

	items := make([]any, 0, len(orders))
	for _, order := range orders {
		items = append(items, orderToMap(order))
	}
	out, err := structpb.NewStruct(map[string]any{"orders": items})
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode orders")
	}
	return out, nil
}

func (s *OrderTrackerService) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrDuplicateOrderID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		s.logger.WithError(err).WithField("method", method).Error("grpc call failed")
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(req *structpb.Struct, name string) string {
	value, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	if str, ok := value.GetKind().(*structpb.Value_StringValue); ok {
		return str.StringValue
	}
	return ""
}

// intField возвращает 0 для нечисловых и дробных значений: трекер отклонит такое quantity.
func intField(req *structpb.Struct, name string) int {
	value, ok := req.GetFields()[name]
	if !ok {
		return 0
	}
	num, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok || num.NumberValue != math.Trunc(num.NumberValue) ||
		num.NumberValue > math.MaxInt32 || num.NumberValue < math.MinInt32 {
		return 0
	}
	return int(num.NumberValue)
}

func orderToMap(order domain.Order) map[string]any {
	return map[string]any{
		"order_id":    order.OrderID,
		"item_name":   order.ItemName,
		"quantity":    order.Quantity,
		"customer_id": order.CustomerID,
		"status":      string(order.Status),
	}
}

func orderToStruct(order domain.Order) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(orderToMap(order))
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode order")
	}
	return out, nil
}

// OrderFromStruct разбирает ответ сервиса обратно в domain.Order.
func OrderFromStruct(in *structpb.Struct) domain.Order {
	return domain.Order{
		OrderID:    stringField(in, "order_id"),
		ItemName:   stringField(in, "item_name"),
		Quantity:   intField(in, "quantity"),
		CustomerID: stringField(in, "customer_id"),
		Status:     domain.OrderStatus(stringField(in, "status")),
	}
}

var _ OrderTrackerServer = (*OrderTrackerService)(nil)
