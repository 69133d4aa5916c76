package app_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

// ---- fakes ----

type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (fakeHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// fakeTokens issues the user id itself as the token.
type fakeTokens struct{}

func (fakeTokens) Issue(userID string, _ domain.Role) (string, time.Time, error) {
	return "tok:" + userID, time.Now().Add(time.Hour), nil
}
func (fakeTokens) Verify(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// ---- seeding ----

func seedUser(t *testing.T, st *memory.Store, id string, role domain.Role) domain.Identity {
	t.Helper()
	err := st.CreateUser(context.Background(), domain.User{
		ID:        id,
		Name:      id,
		Email:     id + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return domain.Identity{UserID: id, Role: role}
}

func seedHotel(t *testing.T, st *memory.Store, id, name, province string, created time.Time) domain.Hotel {
	t.Helper()
	h := domain.Hotel{
		ID:        id,
		Name:      name,
		Address:   "1 Main Road",
		Province:  province,
		CreatedAt: created,
	}
	if err := st.CreateHotel(context.Background(), h); err != nil {
		t.Fatalf("seed hotel %s: %v", id, err)
	}
	return h
}

var day = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
