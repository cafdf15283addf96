package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed Store.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{DB: pool}
}

func (s *PGStore) ListBarberShops(ctx context.Context, search string) ([]BarberShop, error) {
	q := `SELECT id, name, address, description, phones, image_url, created_at
	      FROM barbershops`
	args := []any{}
	if search != "" {
		q += ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	q += ` ORDER BY name`

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BarberShop
	for rows.Next() {
		var b BarberShop
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Description,
			&b.Phones, &b.ImageURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PGStore) GetBarberShop(ctx context.Context, id string) (*BarberShop, error) {
	q := `SELECT id, name, address, description, phones, image_url, created_at
	      FROM barbershops WHERE id=$1`
	var b BarberShop
	err := s.DB.QueryRow(ctx, q, id).Scan(&b.ID, &b.Name, &b.Address,
		&b.Description, &b.Phones, &b.ImageURL, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PGStore) ListShopServices(ctx context.Context, shopID string) ([]BarberShopService, error) {
	q := `SELECT id, barbershop_id, name, description, image_url, price::text
	      FROM barbershop_services WHERE barbershop_id=$1 ORDER BY name`
	rows, err := s.DB.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BarberShopService
	for rows.Next() {
		var sv BarberShopService
		if err := rows.Scan(&sv.ID, &sv.BarberShopID, &sv.Name,
			&sv.Description, &sv.ImageURL, &sv.Price); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *PGStore) GetService(ctx context.Context, id string) (*BarberShopService, error) {
	q := `SELECT id, barbershop_id, name, description, image_url, price::text
	      FROM barbershop_services WHERE id=$1`
	var sv BarberShopService
	err := s.DB.QueryRow(ctx, q, id).Scan(&sv.ID, &sv.BarberShopID, &sv.Name,
		&sv.Description, &sv.ImageURL, &sv.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *PGStore) ListServiceBookings(ctx context.Context, serviceID string, from, to time.Time) ([]Booking, error) {
	q := `SELECT id, service_id, user_id, date, created_at
	      FROM bookings
	      WHERE service_id=$1 AND date >= $2 AND date < $3
	      ORDER BY date`
	rows, err := s.DB.Query(ctx, q, serviceID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.ServiceID, &b.UserID, &b.Date, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertBooking persists one booking. There is deliberately no check that the
// slot is still free: availability is enforced only by the slot filter on the
// read path, so two concurrent inserts for the same slot can both succeed.
func (s *PGStore) InsertBooking(ctx context.Context, b *Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	q := `INSERT INTO bookings (id, service_id, user_id, date, created_at)
	      VALUES ($1, $2, $3, $4, now())
	      RETURNING created_at`
	return s.DB.QueryRow(ctx, q, b.ID, b.ServiceID, b.UserID, b.Date).Scan(&b.CreatedAt)
}

func (s *PGStore) ListUserBookings(ctx context.Context, userID string, rel Relation, now time.Time) ([]BookingDetail, error) {
	q := `SELECT b.id, b.service_id, b.user_id, b.date, b.created_at,
	             s.id, s.barbershop_id, s.name, s.description, s.image_url, s.price::text,
	             sh.id, sh.name, sh.address, sh.description, sh.phones, sh.image_url, sh.created_at
	      FROM bookings b
	      JOIN barbershop_services s ON s.id = b.service_id
	      JOIN barbershops sh ON sh.id = s.barbershop_id
	      WHERE b.user_id=$1 AND `
	if rel == RelationPast {
		q += `b.date < $2 ORDER BY b.date DESC`
	} else {
		q += `b.date >= $2 ORDER BY b.date ASC`
	}

	rows, err := s.DB.Query(ctx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookingDetail
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(
			&d.ID, &d.ServiceID, &d.UserID, &d.Date, &d.CreatedAt,
			&d.Service.ID, &d.Service.BarberShopID, &d.Service.Name,
			&d.Service.Description, &d.Service.ImageURL, &d.Service.Price,
			&d.BarberShop.ID, &d.BarberShop.Name, &d.BarberShop.Address,
			&d.BarberShop.Description, &d.BarberShop.Phones,
			&d.BarberShop.ImageURL, &d.BarberShop.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
