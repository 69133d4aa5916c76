package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// DefaultBookingQuota is how many bookings a regular user may hold.
const DefaultBookingQuota = 3

type BookingService struct {
	bookings domain.BookingRepository
	hotels   domain.HotelRepository
	quota    int
	now      func() time.Time
}

func NewBookingService(b domain.BookingRepository, h domain.HotelRepository, quota int) *BookingService {
	if quota <= 0 {
		quota = DefaultBookingQuota
	}
	return &BookingService{bookings: b, hotels: h, quota: quota, now: now}
}

// ListBookings returns the caller's bookings, or every booking for callers
// allowed to see all of them. hotelID narrows the listing to one hotel.
func (s *BookingService) ListBookings(ctx context.Context, who domain.Identity, hotelID string) ([]domain.BookingView, error) {
	f := domain.BookingFilter{HotelID: hotelID}
	if !who.Can(domain.CapViewAllBookings) {
		f.UserID = who.UserID
	}
	if hotelID != "" {
		if _, err := s.hotels.GetHotel(ctx, hotelID); err != nil {
			return nil, fmt.Errorf("get hotel %s: %w", hotelID, err)
		}
	}
	out, err := s.bookings.ListBookings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (s *BookingService) GetBooking(ctx context.Context, who domain.Identity, id string) (domain.BookingView, error) {
	v, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return domain.BookingView{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	if !who.CanActOnBooking(v.UserID) {
		return domain.BookingView{}, fmt.Errorf("user %s is not authorized to access booking %s: %w", who.UserID, id, domain.ErrForbidden)
	}
	return v, nil
}

// CreateBooking books hotelID for the caller. Regular users are held to the
// configured quota; the check and the insert are atomic in the store.
func (s *BookingService) CreateBooking(ctx context.Context, who domain.Identity, hotelID string, apptDate time.Time) (domain.BookingView, error) {
	b := domain.Booking{
		ID:        uuid.NewString(),
		ApptDate:  apptDate.UTC(),
		UserID:    who.UserID,
		HotelID:   hotelID,
		CreatedAt: s.now(),
	}
	if err := domain.Validate(b); err != nil {
		return domain.BookingView{}, err
	}
	if err := s.bookings.CreateBooking(ctx, b, who.BookingQuota(s.quota)); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			observability.ObserveBooking("quota_rejected")
			log.Warn().Str("user", who.UserID).Int("quota", s.quota).Msg("booking quota reached")
			return domain.BookingView{}, fmt.Errorf("the user with ID %s has already made %d bookings: %w", who.UserID, s.quota, domain.ErrQuotaExceeded)
		}
		return domain.BookingView{}, fmt.Errorf("create booking: %w", err)
	}
	observability.ObserveBooking("created")
	log.Info().Str("booking", b.ID).Str("user", who.UserID).Str("hotel", hotelID).Msg("booking created")
	return s.bookings.GetBooking(ctx, b.ID)
}

func (s *BookingService) UpdateBooking(ctx context.Context, who domain.Identity, id string, patch domain.BookingPatch) (domain.BookingView, error) {
	cur, err := s.GetBooking(ctx, who, id)
	if err != nil {
		return domain.BookingView{}, err
	}
	next := patch.Apply(cur.Booking())
	if err := domain.Validate(next); err != nil {
		return domain.BookingView{}, err
	}
	if err := s.bookings.UpdateBooking(ctx, next); err != nil {
		return domain.BookingView{}, fmt.Errorf("update booking %s: %w", id, err)
	}
	observability.ObserveBooking("updated")
	return s.bookings.GetBooking(ctx, id)
}

func (s *BookingService) DeleteBooking(ctx context.Context, who domain.Identity, id string) error {
	if _, err := s.GetBooking(ctx, who, id); err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	observability.ObserveBooking("deleted")
	log.Info().Str("booking", id).Str("user", who.UserID).Msg("booking deleted")
	return nil
}
