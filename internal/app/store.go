package app

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthenticated is returned when a booking operation is attempted with
// no active session.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrNotFound is returned for lookups of shops or services that do not exist.
var ErrNotFound = errors.New("not found")

// Store is the booking store. Handlers depend on this interface so the flow
// logic can be exercised without Postgres.
type Store interface {
	ListBarberShops(ctx context.Context, search string) ([]BarberShop, error)
	GetBarberShop(ctx context.Context, id string) (*BarberShop, error)
	ListShopServices(ctx context.Context, shopID string) ([]BarberShopService, error)
	GetService(ctx context.Context, id string) (*BarberShopService, error)

	// ListServiceBookings returns bookings for one service with date in
	// [from, to), the availability engine's input.
	ListServiceBookings(ctx context.Context, serviceID string, from, to time.Time) ([]Booking, error)

	InsertBooking(ctx context.Context, b *Booking) error

	// ListUserBookings returns the user's bookings joined with service and
	// shop. Upcoming means date >= now ascending, past means date < now
	// descending.
	ListUserBookings(ctx context.Context, userID string, rel Relation, now time.Time) ([]BookingDetail, error)
}
