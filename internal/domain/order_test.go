package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

// helper для валидных входных данных заказа.
func makeNewOrder() domain.NewOrder {
	return domain.NewOrder{
		OrderID:    "A1",
		ItemName:   "Widget",
		Quantity:   2,
		CustomerID: "C1",
	}
}

func TestNewOrderValidate_DefaultsToPending(t *testing.T) {
	order, err := makeNewOrder().Validate()
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected status pending, got %s", order.Status)
	}
	if order.OrderID != "A1" || order.ItemName != "Widget" || order.Quantity != 2 || order.CustomerID != "C1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestNewOrderValidate_ExplicitStatus(t *testing.T) {
	input := makeNewOrder()
	input.Status = "shipped"

	order, err := input.Validate()
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
	if order.Status != domain.OrderStatusShipped {
		t.Fatalf("expected status shipped, got %s", order.Status)
	}
}

func TestNewOrderValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(n *domain.NewOrder)
		field string
	}{
		{name: "empty order id", mut: func(n *domain.NewOrder) { n.OrderID = "" }, field: "order_id"},
		{name: "blank order id", mut: func(n *domain.NewOrder) { n.OrderID = "   " }, field: "order_id"},
		{name: "empty item name", mut: func(n *domain.NewOrder) { n.ItemName = "" }, field: "item_name"},
		{name: "zero quantity", mut: func(n *domain.NewOrder) { n.Quantity = 0 }, field: "quantity"},
		{name: "negative quantity", mut: func(n *domain.NewOrder) { n.Quantity = -3 }, field: "quantity"},
		{name: "empty customer", mut: func(n *domain.NewOrder) { n.CustomerID = "" }, field: "customer_id"},
		{name: "unknown status", mut: func(n *domain.NewOrder) { n.Status = "lost" }, field: "status"},
		{name: "status with wrong case", mut: func(n *domain.NewOrder) { n.Status = "Pending" }, field: "status"},
		{name: "first failing field wins", mut: func(n *domain.NewOrder) { n.ItemName = ""; n.Quantity = 0 }, field: "item_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := makeNewOrder()
			tc.mut(&input)

			_, err := input.Validate()
			if err == nil {
				t.Fatalf("expected validation error for case %s", tc.name)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			field, ok := domain.ValidationField(err)
			if !ok || field != tc.field {
				t.Fatalf("expected field %q, got %q (ok=%v)", tc.field, field, ok)
			}
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	tests := []struct {
		status domain.OrderStatus
		want   bool
	}{
		{status: domain.OrderStatusPending, want: true},
		{status: domain.OrderStatusShipped, want: true},
		{status: domain.OrderStatusDelivered, want: true},
		{status: domain.OrderStatusCancelled, want: true},
		{status: domain.OrderStatus("canceled"), want: false},
		{status: domain.OrderStatus(""), want: false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := tc.status.Valid(); got != tc.want {
				t.Fatalf("status %q valid=%v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, status := range domain.OrderStatuses() {
		parsed, err := domain.ParseOrderStatus(string(status))
		if err != nil {
			t.Fatalf("parse %q: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("expected %q, got %q", status, parsed)
		}
	}

	_, err := domain.ParseOrderStatus("returned")
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOrderWithStatus_KeepsOtherFields(t *testing.T) {
	order, err := makeNewOrder().Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	updated := order.WithStatus(domain.OrderStatusDelivered)
	if updated.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatal("original order was modified")
	}
	updated.Status = order.Status
	if updated != order {
		t.Fatalf("fields other than status changed: %+v vs %+v", updated, order)
	}
}
