package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type HotelService struct {
	hotels   domain.HotelRepository
	bookings domain.BookingRepository
	maxLimit int
	now      func() time.Time
}

func NewHotelService(h domain.HotelRepository, b domain.BookingRepository, maxLimit int) *HotelService {
	return &HotelService{hotels: h, bookings: b, maxLimit: maxLimit, now: now}
}

// HotelList is one page of hotels. Total counts every hotel matching the
// filter, not only this page.
type HotelList struct {
	Items      []domain.HotelView
	Total      int64
	Pagination query.Pagination
}

func (s *HotelService) ListHotels(ctx context.Context, values url.Values) (HotelList, error) {
	opts, err := query.Parse(values, domain.HotelSchema, domain.DefaultHotelSort, s.maxLimit)
	if err != nil {
		return HotelList{}, invalid(err)
	}
	hq := domain.HotelQuery{
		Filter: opts.Filter,
		Fields: opts.Fields,
		Sort:   opts.Sort,
		Offset: opts.Page.StartIndex(),
		Limit:  opts.Page.Limit,
	}

	var (
		hotels []domain.Hotel
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.hotels.CountHotels(gctx, opts.Filter)
		total = n
		return err
	})
	g.Go(func() error {
		hs, err := s.hotels.ListHotels(gctx, hq)
		hotels = hs
		return err
	})
	if err := g.Wait(); err != nil {
		return HotelList{}, fmt.Errorf("list hotels: %w", err)
	}

	ids := make([]string, 0, len(hotels))
	for _, h := range hotels {
		ids = append(ids, h.ID)
	}
	bookings, err := s.bookings.ListBookingsForHotels(ctx, ids)
	if err != nil {
		return HotelList{}, fmt.Errorf("list hotel bookings: %w", err)
	}
	byHotel := make(map[string][]domain.Booking, len(hotels))
	for _, b := range bookings {
		byHotel[b.HotelID] = append(byHotel[b.HotelID], b)
	}

	items := make([]domain.HotelView, 0, len(hotels))
	for _, h := range hotels {
		items = append(items, domain.HotelView{Hotel: h, Bookings: byHotel[h.ID], Fields: opts.Fields})
	}
	return HotelList{
		Items:      items,
		Total:      total,
		Pagination: query.Paginate(opts.Page, total),
	}, nil
}

func (s *HotelService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	h, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("get hotel %s: %w", id, err)
	}
	return h, nil
}

func (s *HotelService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.ID = uuid.NewString()
	h.CreatedAt = s.now()
	if err := domain.Validate(h); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.hotels.CreateHotel(ctx, h); err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	log.Info().Str("hotel", h.ID).Str("name", h.Name).Msg("hotel created")
	return h, nil
}

// UpdateHotel merges patch into the stored hotel and validates the result.
func (s *HotelService) UpdateHotel(ctx context.Context, id string, patch domain.HotelPatch) (domain.Hotel, error) {
	cur, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("get hotel %s: %w", id, err)
	}
	next := patch.Apply(cur)
	if err := domain.Validate(next); err != nil {
		return domain.Hotel{}, err
	}
	if err := s.hotels.UpdateHotel(ctx, next); err != nil {
		return domain.Hotel{}, fmt.Errorf("update hotel %s: %w", id, err)
	}
	return next, nil
}

// DeleteHotel removes the hotel together with its bookings.
func (s *HotelService) DeleteHotel(ctx context.Context, id string) error {
	removed, err := s.hotels.DeleteHotel(ctx, id)
	if err != nil {
		return fmt.Errorf("delete hotel %s: %w", id, err)
	}
	log.Info().Str("hotel", id).Int64("bookings_removed", removed).Msg("hotel deleted")
	return nil
}

// invalid turns a query parse error into a validation error.
func invalid(err error) error {
	if errors.Is(err, query.ErrInvalid) {
		return &domain.ValidationError{Problems: []string{err.Error()}}
	}
	return err
}

// timestamps are kept at millisecond precision, the finest every store keeps
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
