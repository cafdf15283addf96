package app

import "time"

type BarberShop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description,omitempty"`
	Phones      []string  `json:"phones,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type BarberShopService struct {
	ID           string `json:"id"`
	BarberShopID string `json:"barbershop_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Price        string `json:"price"` // decimal, rendered as string
}

// Booking is immutable once created. It carries no stored status: whether it
// is upcoming or concluded is derived by comparing Date against "now" at read
// time, so a booking can flip between the two lists without any write.
type Booking struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// BookingDetail is a booking joined with its service and barbershop, the
// shape the bookings listing renders.
type BookingDetail struct {
	Booking
	Service    BarberShopService `json:"service"`
	BarberShop BarberShop        `json:"barbershop"`
}

// Relation selects which side of "now" a bookings listing covers.
type Relation string

const (
	RelationUpcoming Relation = "upcoming"
	RelationPast     Relation = "past"
)

// IsUpcoming reports whether the booking is still ahead of now. A booking
// dated exactly now counts as upcoming, matching the date >= now read query.
func (b Booking) IsUpcoming(now time.Time) bool {
	return !b.Date.Before(now)
}

func (b Booking) IsConcluded(now time.Time) bool {
	return b.Date.Before(now)
}
