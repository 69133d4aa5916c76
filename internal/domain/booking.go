package domain

import "time"

type Booking struct {
	ID        string    `json:"id"`
	ApptDate  time.Time `json:"apptDate" validate:"required"`
	UserID    string    `json:"user" validate:"required"`
	HotelID   string    `json:"hotel" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// HotelSummary is the slice of a hotel shown next to a booking.
type HotelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province,omitempty"`
	Tel      string `json:"tel,omitempty"`
}

// BookingView is a booking with its hotel resolved.
type BookingView struct {
	ID        string       `json:"id"`
	ApptDate  time.Time    `json:"apptDate"`
	UserID    string       `json:"user"`
	Hotel     HotelSummary `json:"hotel"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (v BookingView) Booking() Booking {
	return Booking{
		ID:        v.ID,
		ApptDate:  v.ApptDate,
		UserID:    v.UserID,
		HotelID:   v.Hotel.ID,
		CreatedAt: v.CreatedAt,
	}
}

// BookingFilter narrows a booking listing. Empty fields match everything.
type BookingFilter struct {
	UserID  string
	HotelID string
}

// BookingPatch is a partial booking update.
type BookingPatch struct {
	ApptDate *time.Time
	HotelID  *string
}

func (p BookingPatch) Apply(b Booking) Booking {
	if p.ApptDate != nil {
		b.ApptDate = *p.ApptDate
	}
	if p.HotelID != nil {
		b.HotelID = *p.HotelID
	}
	return b
}
