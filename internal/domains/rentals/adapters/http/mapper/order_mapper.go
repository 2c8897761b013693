package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
)

// CreateOrderRequest places an order for one vendor's variants.
type CreateOrderRequest struct {
	Items []Item `json:"items" binding:"required,min=1,dive"`
}

// Order is the HTTP representation of an order. Money is rendered as fixed two-decimal strings.
type Order struct {
	ID           int64         `json:"id"`
	OrderNumber  string        `json:"orderNumber"`
	CustomerID   int64         `json:"customerId"`
	VendorID     int64         `json:"vendorId"`
	Status       string        `json:"status"`
	StartDate    time.Time     `json:"startDate"`
	EndDate      time.Time     `json:"endDate"`
	Subtotal     string        `json:"subtotal"`
	Tax          string        `json:"tax"`
	TotalAmount  string        `json:"totalAmount"`
	Reservations []Reservation `json:"reservations"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// OrderSummary is a listing row.
type OrderSummary struct {
	ID               int64     `json:"id"`
	OrderNumber      string    `json:"orderNumber"`
	VendorID         int64     `json:"vendorId"`
	Status           string    `json:"status"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	TotalAmount      string    `json:"totalAmount"`
	ReservationCount int       `json:"reservationCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// OrderList wraps a page of summaries.
type OrderList struct {
	Orders []OrderSummary `json:"orders"`
}

// CancelOrderResponse reports how many reservations a cancellation released.
type CancelOrderResponse struct {
	Order    Order  `json:"order"`
	Released int    `json:"released"`
	Message  string `json:"message"`
}

// FromOrder maps a domain order.
func FromOrder(o *domain.Order) Order {
	return Order{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		VendorID:     o.VendorID,
		Status:       string(o.Status),
		StartDate:    o.Period.Start,
		EndDate:      o.Period.End,
		Subtotal:     o.Subtotal.StringFixed(2),
		Tax:          o.Tax.StringFixed(2),
		TotalAmount:  o.TotalAmount.StringFixed(2),
		Reservations: FromReservations(o.Reservations),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// FromOrderSummaries maps a listing page.
func FromOrderSummaries(summaries []*domain.OrderSummary) OrderList {
	out := OrderList{Orders: make([]OrderSummary, 0, len(summaries))}
	for _, s := range summaries {
		out.Orders = append(out.Orders, OrderSummary{
			ID:               s.ID,
			OrderNumber:      s.OrderNumber,
			VendorID:         s.VendorID,
			Status:           string(s.Status),
			StartDate:        s.Period.Start,
			EndDate:          s.Period.End,
			TotalAmount:      s.TotalAmount.StringFixed(2),
			ReservationCount: s.ReservationCount,
			CreatedAt:        s.CreatedAt,
		})
	}
	return out
}

// FromCancellation builds the cancellation response.
func FromCancellation(o *domain.Order, released int) CancelOrderResponse {
	return CancelOrderResponse{
		Order:    FromOrder(o),
		Released: released,
		Message:  fmt.Sprintf("Order cancelled. %d reservations released.", released),
	}
}

// ParseOrderStatus parses an optional status filter.
func ParseOrderStatus(raw string) (*domain.OrderStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	status, err := domain.ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
