// Package memory is an in-process store used for local development and
// tests. A single mutex makes every operation atomic, so the quota check and
// the cascade delete hold the same guarantees as the database stores.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[string]domain.Hotel
	bookings map[string]domain.Booking
	users    map[string]domain.User
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		hotels:   make(map[string]domain.Hotel),
		bookings: make(map[string]domain.Booking),
		users:    make(map[string]domain.User),
	}
}

func (s *Store) matchingHotels(f query.Filter) []domain.Hotel {
	var out []domain.Hotel
	for _, h := range s.hotels {
		if f.Match(h.Values()) {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) ListHotels(_ context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hs := s.matchingHotels(q.Filter)
	sort.Slice(hs, func(i, j int) bool {
		a, b := hs[i].Values(), hs[j].Values()
		if query.Less(a, b, q.Sort) {
			return true
		}
		if query.Less(b, a, q.Sort) {
			return false
		}
		return hs[i].ID < hs[j].ID
	})
	if q.Offset >= len(hs) {
		return []domain.Hotel{}, nil
	}
	end := len(hs)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return hs[q.Offset:end], nil
}

func (s *Store) CountHotels(_ context.Context, f query.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchingHotels(f))), nil
}

func (s *Store) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; ok {
		return fmt.Errorf("hotel %s: %w", h.ID, domain.ErrConflict)
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.hotels[h.ID]
	if !ok {
		return domain.ErrNotFound
	}
	h.CreatedAt = old.CreatedAt
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) DeleteHotel(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return 0, domain.ErrNotFound
	}
	var removed int64
	for bid, b := range s.bookings {
		if b.HotelID == id {
			delete(s.bookings, bid)
			removed++
		}
	}
	delete(s.hotels, id)
	return removed, nil
}

func (s *Store) view(b domain.Booking) domain.BookingView {
	h := s.hotels[b.HotelID]
	return domain.BookingView{
		ID:       b.ID,
		ApptDate: b.ApptDate,
		UserID:   b.UserID,
		Hotel: domain.HotelSummary{
			ID:       h.ID,
			Name:     h.Name,
			Province: h.Province,
			Tel:      h.Tel,
		},
		CreatedAt: b.CreatedAt,
	}
}

func sortBookings(bs []domain.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.Before(bs[j].CreatedAt)
		}
		return bs[i].ID < bs[j].ID
	})
}

func (s *Store) ListBookings(_ context.Context, f domain.BookingFilter) ([]domain.BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bs []domain.Booking
	for _, b := range s.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.HotelID != "" && b.HotelID != f.HotelID {
			continue
		}
		bs = append(bs, b)
	}
	sortBookings(bs)
	out := make([]domain.BookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, s.view(b))
	}
	return out, nil
}

func (s *Store) ListBookingsForHotels(_ context.Context, hotelIDs []string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(hotelIDs))
	for _, id := range hotelIDs {
		want[id] = true
	}
	var out []domain.Booking
	for _, b := range s.bookings {
		if want[b.HotelID] {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) GetBooking(_ context.Context, id string) (domain.BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.BookingView{}, domain.ErrNotFound
	}
	return s.view(b), nil
}

func (s *Store) CreateBooking(_ context.Context, b domain.Booking, quota int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hotels[b.HotelID]; !ok {
		return fmt.Errorf("hotel %s: %w", b.HotelID, domain.ErrNotFound)
	}
	if _, ok := s.users[b.UserID]; !ok {
		return fmt.Errorf("user %s: %w", b.UserID, domain.ErrNotFound)
	}
	if quota > 0 {
		n := 0
		for _, other := range s.bookings {
			if other.UserID == b.UserID {
				n++
			}
		}
		if n >= quota {
			return fmt.Errorf("user %s already has %d bookings: %w", b.UserID, n, domain.ErrQuotaExceeded)
		}
	}
	if _, ok := s.bookings[b.ID]; ok {
		return fmt.Errorf("booking %s: %w", b.ID, domain.ErrConflict)
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) UpdateBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.bookings[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.hotels[b.HotelID]; !ok {
		return fmt.Errorf("hotel %s: %w", b.HotelID, domain.ErrNotFound)
	}
	old.ApptDate = b.ApptDate
	old.HotelID = b.HotelID
	s.bookings[b.ID] = old
	return nil
}

func (s *Store) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}
