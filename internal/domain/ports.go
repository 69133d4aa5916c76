package domain

import (
	"context"
	"time"

	"hotel_booking/internal/query"
)

type HotelRepository interface {
	ListHotels(ctx context.Context, q HotelQuery) ([]Hotel, error)
	CountHotels(ctx context.Context, f query.Filter) (int64, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	CreateHotel(ctx context.Context, h Hotel) error
	UpdateHotel(ctx context.Context, h Hotel) error
	// DeleteHotel removes the hotel and every booking that references it in
	// one transaction and returns the number of bookings removed.
	DeleteHotel(ctx context.Context, id string) (int64, error)
}

type BookingRepository interface {
	ListBookings(ctx context.Context, f BookingFilter) ([]BookingView, error)
	ListBookingsForHotels(ctx context.Context, hotelIDs []string) ([]Booking, error)
	GetBooking(ctx context.Context, id string) (BookingView, error)
	// CreateBooking checks that hotel and user exist and, when quota > 0, that
	// the user holds fewer than quota bookings, then inserts b. Check and
	// insert happen in one transaction.
	CreateBooking(ctx context.Context, b Booking, quota int) error
	UpdateBooking(ctx context.Context, b Booking) error
	DeleteBooking(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Store is a complete persistence backend.
type Store interface {
	HotelRepository
	BookingRepository
	UserRepository
}

type TokenManager interface {
	Issue(userID string, role Role) (token string, expires time.Time, err error)
	// Verify returns the user id the token was issued for.
	Verify(token string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// DirectoryClient reads hotel records from the upstream hotel directory.
type DirectoryClient interface {
	GetProperty(ctx context.Context, id int64) (map[string]any, error)
}
