package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Capability is something a role may be allowed to do.
type Capability int

const (
	CapManageHotels Capability = iota
	CapViewAllBookings
	CapManageAnyBooking
	CapUnlimitedBookings
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageHotels:      true,
		CapViewAllBookings:   true,
		CapManageAnyBooking:  true,
		CapUnlimitedBookings: true,
	},
	RoleUser: {},
}

func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"required,email"`
	Tel          string    `json:"tel,omitempty" validate:"max=32"`
	Role         Role      `json:"role" validate:"required,oneof=user admin"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) Can(c Capability) bool { return i.Role.Can(c) }

// CanActOnBooking reports whether the caller may read, change or delete a
// booking owned by ownerID.
func (i Identity) CanActOnBooking(ownerID string) bool {
	return ownerID == i.UserID || i.Can(CapManageAnyBooking)
}

// BookingQuota is the number of bookings the caller may hold given the
// configured per-user limit. Zero means unlimited.
func (i Identity) BookingQuota(limit int) int {
	if i.Can(CapUnlimitedBookings) {
		return 0
	}
	return limit
}
