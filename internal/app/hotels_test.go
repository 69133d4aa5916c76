package app_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
	"hotel_booking/internal/storage/memory"
)

func TestListHotels_Defaults(t *testing.T) {
	st := memory.New()
	for i := 0; i < 30; i++ {
		seedHotel(t, st, fmt.Sprintf("h%02d", i), fmt.Sprintf("Hotel %02d", i), "Bangkok", day.Add(time.Duration(i)*time.Hour))
	}
	svc := app.NewHotelService(st, st, 100)

	out, err := svc.ListHotels(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Items) != 25 || out.Total != 30 {
		t.Fatalf("items=%d total=%d", len(out.Items), out.Total)
	}
	if out.Items[0].ID != "h29" || out.Items[24].ID != "h05" {
		t.Fatalf("expected newest first, got %s .. %s", out.Items[0].ID, out.Items[24].ID)
	}
	if out.Pagination.Prev != nil || out.Pagination.Next == nil || *out.Pagination.Next != (query.Cursor{Page: 2, Limit: 25}) {
		t.Fatalf("pagination: %+v", out.Pagination)
	}
}

func TestListHotels_FilterSortSelect(t *testing.T) {
	st := memory.New()
	seedHotel(t, st, "a", "Alpha", "Bangkok", day)
	seedHotel(t, st, "b", "Bravo", "Phuket", day.Add(time.Hour))
	seedHotel(t, st, "c", "Charlie", "Bangkok", day.Add(2*time.Hour))
	svc := app.NewHotelService(st, st, 100)

	v := url.Values{
		"province": {"Bangkok"},
		"sort":     {"name"},
		"select":   {"name"},
		"limit":    {"1"},
		"page":     {"2"},
	}
	out, err := svc.ListHotels(context.Background(), v)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.Total != 2 || len(out.Items) != 1 || out.Items[0].ID != "c" {
		t.Fatalf("unexpected page: total=%d items=%+v", out.Total, out.Items)
	}
	if out.Pagination.Next != nil || out.Pagination.Prev == nil || out.Pagination.Prev.Page != 1 {
		t.Fatalf("pagination: %+v", out.Pagination)
	}
	if len(out.Items[0].Fields) != 1 || out.Items[0].Fields[0] != "name" {
		t.Fatalf("projection not carried: %+v", out.Items[0].Fields)
	}

	out, err = svc.ListHotels(context.Background(), url.Values{"createdAt[gte]": {day.Add(time.Hour).Format(time.RFC3339)}})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("createdAt[gte]: total=%d", out.Total)
	}
}

func TestListHotels_RejectsBadQuery(t *testing.T) {
	st := memory.New()
	svc := app.NewHotelService(st, st, 100)
	for _, q := range []string{"password=x", "name[regex]=a", "sort=-secret", "select=secret", "createdAt[gt]=soon"} {
		v, _ := url.ParseQuery(q)
		if _, err := svc.ListHotels(context.Background(), v); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", q, err)
		}
	}
}

func TestListHotels_AttachesBookings(t *testing.T) {
	st := memory.New()
	seedHotel(t, st, "h1", "Riverside", "Bangkok", day)
	seedHotel(t, st, "h2", "Hilltop", "Bangkok", day.Add(time.Hour))
	alice := seedUser(t, st, "alice", domain.RoleUser)
	bookings := app.NewBookingService(st, st, 3)
	if _, err := bookings.CreateBooking(context.Background(), alice, "h1", day); err != nil {
		t.Fatalf("book: %v", err)
	}

	out, err := app.NewHotelService(st, st, 100).ListHotels(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := map[string]int{}
	for _, h := range out.Items {
		got[h.ID] = len(h.Bookings)
	}
	if got["h1"] != 1 || got["h2"] != 0 {
		t.Fatalf("bookings per hotel: %v", got)
	}
}

func TestHotelCRUD(t *testing.T) {
	st := memory.New()
	svc := app.NewHotelService(st, st, 100)
	ctx := context.Background()

	if _, err := svc.CreateHotel(ctx, domain.Hotel{Name: "No address"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.CreateHotel(ctx, domain.Hotel{Name: "X", Address: "Y", PostalCode: "1234"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("postal code: expected ErrValidation, got %v", err)
	}

	h, err := svc.CreateHotel(ctx, domain.Hotel{Name: "Riverside", Address: "1 River Rd", PostalCode: "10200"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.ID == "" || h.CreatedAt.IsZero() {
		t.Fatalf("id and createdAt not assigned: %+v", h)
	}

	tel := "02-000-0000"
	up, err := svc.UpdateHotel(ctx, h.ID, domain.HotelPatch{Tel: &tel})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if up.Tel != tel || up.Name != "Riverside" {
		t.Fatalf("partial update lost fields: %+v", up)
	}
	empty := ""
	if _, err := svc.UpdateHotel(ctx, h.ID, domain.HotelPatch{Name: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateHotel(ctx, "missing", domain.HotelPatch{Tel: &tel}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteHotel_CascadesBookings(t *testing.T) {
	st := memory.New()
	seedHotel(t, st, "h1", "Riverside", "Bangkok", day)
	seedHotel(t, st, "h2", "Hilltop", "Bangkok", day)
	alice := seedUser(t, st, "alice", domain.RoleUser)
	admin := seedUser(t, st, "root", domain.RoleAdmin)
	bookings := app.NewBookingService(st, st, 3)
	hotels := app.NewHotelService(st, st, 100)
	ctx := context.Background()

	for _, h := range []string{"h1", "h1", "h2"} {
		if _, err := bookings.CreateBooking(ctx, alice, h, day); err != nil {
			t.Fatalf("book: %v", err)
		}
	}

	if err := hotels.DeleteHotel(ctx, "h1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := hotels.GetHotel(ctx, "h1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("hotel still present: %v", err)
	}
	left, err := bookings.ListBookings(ctx, admin, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].Hotel.ID != "h2" {
		t.Fatalf("expected only the h2 booking, got %+v", left)
	}
	if err := hotels.DeleteHotel(ctx, "h1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}
