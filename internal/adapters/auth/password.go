package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

type Bcrypt struct{ cost int }

// NewBcrypt returns a hasher; cost <= 0 selects bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

var _ domain.PasswordHasher = (*Bcrypt)(nil)

func (b *Bcrypt) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b *Bcrypt) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password mismatch: %w", domain.ErrUnauthenticated)
	}
	return nil
}
