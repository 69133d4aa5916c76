package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/domain"
)

func TestIdentityCapabilities(t *testing.T) {
	user := domain.Identity{UserID: "u1", Role: domain.RoleUser}
	admin := domain.Identity{UserID: "a1", Role: domain.RoleAdmin}

	for _, c := range []domain.Capability{
		domain.CapManageHotels,
		domain.CapViewAllBookings,
		domain.CapManageAnyBooking,
		domain.CapUnlimitedBookings,
	} {
		if user.Can(c) {
			t.Errorf("user should not have capability %d", c)
		}
		if !admin.Can(c) {
			t.Errorf("admin should have capability %d", c)
		}
	}

	if !user.CanActOnBooking("u1") || user.CanActOnBooking("u2") {
		t.Errorf("user ownership check wrong")
	}
	if !admin.CanActOnBooking("u2") {
		t.Errorf("admin should act on any booking")
	}
	if user.BookingQuota(3) != 3 || admin.BookingQuota(3) != 0 {
		t.Errorf("quota: user=%d admin=%d", user.BookingQuota(3), admin.BookingQuota(3))
	}
	if (domain.Identity{Role: "guest"}).Can(domain.CapManageHotels) {
		t.Errorf("unknown role must have no capabilities")
	}
}

func TestParseRole(t *testing.T) {
	if r, err := domain.ParseRole("admin"); err != nil || r != domain.RoleAdmin {
		t.Fatalf("admin: %v %v", r, err)
	}
	if _, err := domain.ParseRole("root"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateHotel(t *testing.T) {
	long := "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijX" // 51
	tests := []struct {
		name    string
		h       domain.Hotel
		wantErr bool
	}{
		{"ok", domain.Hotel{Name: "A", Address: "B"}, false},
		{"ok postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "10110"}, false},
		{"missing name", domain.Hotel{Address: "B"}, true},
		{"missing address", domain.Hotel{Name: "A"}, true},
		{"long name", domain.Hotel{Name: long, Address: "B"}, true},
		{"short postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "101"}, true},
		{"alpha postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "1011a"}, true},
		{"signed postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "-1234"}, true},
		{"plus postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "+1234"}, true},
		{"decimal postal", domain.Hotel{Name: "A", Address: "B", PostalCode: "1.234"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Validate(tt.h)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("error does not wrap ErrValidation: %v", err)
			}
		})
	}
}

func TestValidationMessagesUseJSONNames(t *testing.T) {
	err := domain.Validate(domain.Hotel{PostalCode: "12"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := map[string]bool{
		"name is required":                        true,
		"address is required":                     true,
		"postalcode must be exactly 5 characters": true,
	}
	if len(ve.Problems) != len(want) {
		t.Fatalf("problems: %v", ve.Problems)
	}
	for _, p := range ve.Problems {
		if !want[p] {
			t.Errorf("unexpected problem %q", p)
		}
	}
}

func TestHotelViewJSON(t *testing.T) {
	h := domain.Hotel{ID: "h1", Name: "Riverside", Address: "1 Rd", Province: "Bangkok", CreatedAt: time.Unix(0, 0).UTC()}

	full, _ := json.Marshal(domain.HotelView{Hotel: h})
	var got map[string]any
	if err := json.Unmarshal(full, &got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != "Riverside" || got["address"] != "1 Rd" {
		t.Fatalf("full view: %s", full)
	}
	if b, ok := got["bookings"].([]any); !ok || len(b) != 0 {
		t.Fatalf("bookings should be an empty array: %s", full)
	}

	sel, _ := json.Marshal(domain.HotelView{Hotel: h, Fields: []string{"name"}})
	got = nil
	if err := json.Unmarshal(sel, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got["id"] != "h1" || got["name"] != "Riverside" {
		t.Fatalf("projected view should hold id, name and bookings: %s", sel)
	}
}

func TestPatches(t *testing.T) {
	h := domain.Hotel{Name: "A", Address: "B", Tel: "1"}
	name := "C"
	got := domain.HotelPatch{Name: &name}.Apply(h)
	if got.Name != "C" || got.Address != "B" || got.Tel != "1" {
		t.Fatalf("hotel patch: %+v", got)
	}

	b := domain.Booking{HotelID: "h1", ApptDate: time.Unix(10, 0)}
	other := "h2"
	nb := domain.BookingPatch{HotelID: &other}.Apply(b)
	if nb.HotelID != "h2" || !nb.ApptDate.Equal(b.ApptDate) {
		t.Fatalf("booking patch: %+v", nb)
	}
}
