package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func newBookingFixture(t *testing.T) (*memory.Store, *app.BookingService) {
	t.Helper()
	st := memory.New()
	seedHotel(t, st, "h1", "Riverside", "Bangkok", day)
	seedHotel(t, st, "h2", "Hilltop", "Chiang Mai", day.Add(time.Hour))
	return st, app.NewBookingService(st, st, app.DefaultBookingQuota)
}

func TestCreateBooking_QuotaForRegularUser(t *testing.T) {
	st, svc := newBookingFixture(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleUser)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateBooking(ctx, alice, "h1", day.AddDate(0, 0, i)); err != nil {
			t.Fatalf("booking %d: %v", i+1, err)
		}
	}
	_, err := svc.CreateBooking(ctx, alice, "h2", day)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("4th booking: expected ErrQuotaExceeded, got %v", err)
	}
	got, _ := svc.ListBookings(ctx, alice, "")
	if len(got) != 3 {
		t.Fatalf("expected 3 bookings after rejection, got %d", len(got))
	}
}

func TestCreateBooking_AdminHasNoQuota(t *testing.T) {
	st, svc := newBookingFixture(t)
	admin := seedUser(t, st, "root", domain.RoleAdmin)

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateBooking(context.Background(), admin, "h1", day); err != nil {
			t.Fatalf("admin booking %d: %v", i+1, err)
		}
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	st, svc := newBookingFixture(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleUser)

	if _, err := svc.CreateBooking(ctx, alice, "nope", day); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown hotel: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateBooking(ctx, alice, "h1", time.Time{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero date: expected ErrValidation, got %v", err)
	}

	v, err := svc.CreateBooking(ctx, alice, "h1", day)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.UserID != "alice" || v.Hotel.Name != "Riverside" || v.Hotel.Province != "Bangkok" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestUpdateDelete_NonOwnerIsDenied(t *testing.T) {
	st, svc := newBookingFixture(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleUser)
	bob := seedUser(t, st, "bob", domain.RoleUser)

	b, err := svc.CreateBooking(ctx, alice, "h1", day)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := day.AddDate(0, 1, 0)
	if _, err := svc.UpdateBooking(ctx, bob, b.ID, domain.BookingPatch{ApptDate: &later}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteBooking(ctx, bob, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetBooking(ctx, bob, b.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("get: expected ErrForbidden, got %v", err)
	}

	got, err := svc.GetBooking(ctx, alice, b.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if !got.ApptDate.Equal(day) {
		t.Fatalf("booking changed: %v", got.ApptDate)
	}
}

func TestUpdateBooking_OwnerAndAdmin(t *testing.T) {
	st, svc := newBookingFixture(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleUser)
	admin := seedUser(t, st, "root", domain.RoleAdmin)

	b, err := svc.CreateBooking(ctx, alice, "h1", day)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := day.AddDate(0, 0, 7)
	got, err := svc.UpdateBooking(ctx, alice, b.ID, domain.BookingPatch{ApptDate: &later})
	if err != nil || !got.ApptDate.Equal(later) {
		t.Fatalf("owner update: %v %+v", err, got)
	}

	h2 := "h2"
	got, err = svc.UpdateBooking(ctx, admin, b.ID, domain.BookingPatch{HotelID: &h2})
	if err != nil || got.Hotel.ID != "h2" || got.UserID != "alice" {
		t.Fatalf("admin update: %v %+v", err, got)
	}

	missing := "gone"
	if _, err := svc.UpdateBooking(ctx, admin, b.ID, domain.BookingPatch{HotelID: &missing}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("move to unknown hotel: expected ErrNotFound, got %v", err)
	}

	if err := svc.DeleteBooking(ctx, admin, b.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.GetBooking(ctx, admin, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListBookings_Scoping(t *testing.T) {
	st, svc := newBookingFixture(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice", domain.RoleUser)
	bob := seedUser(t, st, "bob", domain.RoleUser)
	admin := seedUser(t, st, "root", domain.RoleAdmin)

	mustBook := func(who domain.Identity, hotel string) {
		if _, err := svc.CreateBooking(ctx, who, hotel, day); err != nil {
			t.Fatalf("book %s@%s: %v", who.UserID, hotel, err)
		}
	}
	mustBook(alice, "h1")
	mustBook(alice, "h2")
	mustBook(bob, "h1")

	tests := []struct {
		name  string
		who   domain.Identity
		hotel string
		want  int
	}{
		{"user sees own", alice, "", 2},
		{"user narrowed to hotel", alice, "h1", 1},
		{"other user", bob, "", 1},
		{"admin sees all", admin, "", 3},
		{"admin per hotel", admin, "h1", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListBookings(ctx, tt.who, tt.hotel)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d bookings, want %d", len(got), tt.want)
			}
			for _, b := range got {
				if !tt.who.Can(domain.CapViewAllBookings) && b.UserID != tt.who.UserID {
					t.Fatalf("leaked booking of %s", b.UserID)
				}
			}
		})
	}

	if _, err := svc.ListBookings(ctx, admin, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown hotel: expected ErrNotFound, got %v", err)
	}
}
