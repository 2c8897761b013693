package mapper

import (
	"fmt"
	"time"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/domain"
	"github.com/Apurer/go-rental-api/internal/domains/rentals/ports"
)

// Item is one requested line in reservation and order payloads.
type Item struct {
	VariantID int64  `json:"variantId" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// ReserveRequest attaches reservations to an existing order.
type ReserveRequest struct {
	OrderID int64  `json:"orderId" binding:"required,gt=0"`
	Items   []Item `json:"items" binding:"required,min=1,dive"`
}

// AvailabilityResponse answers an availability query.
type AvailabilityResponse struct {
	VariantID         int64     `json:"variantId"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	RequestedQuantity int       `json:"requestedQuantity"`
	Available         int       `json:"available"`
	Total             int       `json:"total"`
	Reserved          int       `json:"reserved"`
	CanReserve        bool      `json:"canReserve"`
}

// Reservation is the HTTP representation of a reservation.
type Reservation struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	VariantID int64     `json:"variantId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationView adds the joined order and catalog fields.
type ReservationView struct {
	Reservation
	CustomerID  int64  `json:"customerId"`
	VendorID    int64  `json:"vendorId"`
	OrderNumber string `json:"orderNumber"`
	VariantSKU  string `json:"variantSku,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

// ToItemInputs parses the dates of every item. Parse failures are reported per item.
func ToItemInputs(items []Item) ([]ports.ItemInput, error) {
	inputs := make([]ports.ItemInput, 0, len(items))
	for i, item := range items {
		period, err := ParsePeriod(item.StartDate, item.EndDate)
		if err != nil {
			return nil, &domain.ItemError{Index: i, VariantID: item.VariantID, Err: err}
		}
		inputs = append(inputs, ports.ItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Period:    period,
		})
	}
	return inputs, nil
}

// ParsePeriod accepts RFC 3339 timestamps or plain dates.
func ParsePeriod(rawStart, rawEnd string) (domain.Period, error) {
	start, err := domain.ParseDate(rawStart)
	if err != nil {
		return domain.Period{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := domain.ParseDate(rawEnd)
	if err != nil {
		return domain.Period{}, fmt.Errorf("endDate: %w", err)
	}
	return domain.NewPeriod(start, end)
}

// FromAvailability maps the calculator result.
func FromAvailability(a *domain.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		VariantID:         a.VariantID,
		StartDate:         a.Period.Start,
		EndDate:           a.Period.End,
		RequestedQuantity: a.Requested,
		Available:         a.Available,
		Total:             a.Total,
		Reserved:          a.Reserved,
		CanReserve:        a.CanReserve,
	}
}

// FromReservation maps a domain reservation.
func FromReservation(r domain.Reservation) Reservation {
	return Reservation{
		ID:        r.ID,
		OrderID:   r.OrderID,
		VariantID: r.VariantID,
		StartDate: r.Period.Start,
		EndDate:   r.Period.End,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromReservations maps a slice, never returning nil.
func FromReservations(rs []domain.Reservation) []Reservation {
	out := make([]Reservation, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromReservation(r))
	}
	return out
}

// FromReservationView maps a joined view.
func FromReservationView(v *domain.ReservationView) ReservationView {
	return ReservationView{
		Reservation: FromReservation(v.Reservation),
		CustomerID:  v.CustomerID,
		VendorID:    v.VendorID,
		OrderNumber: v.OrderNumber,
		VariantSKU:  v.VariantSKU,
		ProductName: v.ProductName,
	}
}

// FromReservationViews maps a listing.
func FromReservationViews(views []*domain.ReservationView) []ReservationView {
	out := make([]ReservationView, 0, len(views))
	for _, v := range views {
		out = append(out, FromReservationView(v))
	}
	return out
}

// ParseReservationStatuses parses repeated or comma separated status query values.
func ParseReservationStatuses(raw []string) ([]domain.ReservationStatus, error) {
	var statuses []domain.ReservationStatus
	for _, value := range splitCSV(raw) {
		status, err := domain.ParseReservationStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
