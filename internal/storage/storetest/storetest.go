// Package storetest holds the behaviour every domain.Store must share. Each
// backend runs it from its own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

// Opener returns an empty store. It is called once per subtest.
type Opener func(t *testing.T) domain.Store

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func Run(t *testing.T, open Opener) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("hotels", func(t *testing.T) { testHotels(t, open(t)) })
	t.Run("bookings", func(t *testing.T) { testBookings(t, open(t)) })
	t.Run("quota", func(t *testing.T) { testQuota(t, open(t)) })
	t.Run("concurrent quota", func(t *testing.T) { testConcurrentQuota(t, open(t)) })
	t.Run("cascade delete", func(t *testing.T) { testCascade(t, open(t)) })
}

func user(id string) domain.User {
	return domain.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		Role:         domain.RoleUser,
		PasswordHash: "hash-" + id,
		CreatedAt:    base,
	}
}

func hotel(id, name, province string, created time.Time) domain.Hotel {
	return domain.Hotel{
		ID:         id,
		Name:       name,
		Address:    "1 Main Rd",
		Province:   province,
		PostalCode: "10110",
		Tel:        "02-000-0000",
		CreatedAt:  created,
	}
}

func booking(id, userID, hotelID string, n int) domain.Booking {
	return domain.Booking{
		ID:        id,
		ApptDate:  base.AddDate(0, 1, n),
		UserID:    userID,
		HotelID:   hotelID,
		CreatedAt: base.Add(time.Duration(n) * time.Minute),
	}
}

func seed(t *testing.T, st domain.Store, users []string, hotels ...domain.Hotel) {
	t.Helper()
	ctx := context.Background()
	for _, id := range users {
		require.NoError(t, st.CreateUser(ctx, user(id)))
	}
	for _, h := range hotels {
		require.NoError(t, st.CreateHotel(ctx, h))
	}
}

func testUsers(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, []string{"u1"})

	got, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", got.Email)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, "hash-u1", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(base))

	got, err = st.GetUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	dup := user("u2")
	dup.Email = "u1@example.com"
	assert.ErrorIs(t, st.CreateUser(ctx, dup), domain.ErrConflict)

	_, err = st.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = st.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testHotels(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, nil,
		hotel("h1", "Alpha", "Bangkok", base),
		hotel("h2", "Bravo", "Phuket", base.Add(time.Hour)),
		hotel("h3", "Charlie", "Bangkok", base.Add(2*time.Hour)),
		hotel("h4", "Delta", "Chiang Mai", base.Add(3*time.Hour)),
	)

	all, err := st.ListHotels(ctx, domain.HotelQuery{Sort: domain.DefaultHotelSort, Limit: 25})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"h4", "h3", "h2", "h1"}, ids(all))

	f := query.Filter{}.Where("province", query.Eq, "Bangkok")
	n, err := st.CountHotels(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	page, err := st.ListHotels(ctx, domain.HotelQuery{
		Filter: query.Filter{}.Where("name", query.Gte, "B"),
		Sort:   []query.SortField{{Field: "name"}},
		Offset: 1,
		Limit:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"h3", "h4"}, ids(page))

	in, err := st.ListHotels(ctx, domain.HotelQuery{
		Filter: query.Filter{}.Where("province", query.In, "Phuket", "Chiang Mai"),
		Sort:   []query.SortField{{Field: "name", Descending: true}},
		Limit:  25,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"h4", "h2"}, ids(in))

	// equality is case sensitive in every store
	n, err = st.CountHotels(ctx, query.Filter{}.Where("name", query.Eq, "alpha"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	n, err = st.CountHotels(ctx, query.Filter{}.Where("province", query.In, "bangkok", "Phuket"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	since, err := st.CountHotels(ctx, query.Filter{}.Where("createdAt", query.Gt, base.Add(90*time.Minute)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, since)

	got, err := st.GetHotel(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, "Bravo", got.Name)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Hour)))

	got.Tel = "076-111"
	got.Region = "South"
	require.NoError(t, st.UpdateHotel(ctx, got))
	got, err = st.GetHotel(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, "076-111", got.Tel)
	assert.Equal(t, "South", got.Region)

	// an update that changes nothing still succeeds
	require.NoError(t, st.UpdateHotel(ctx, got))

	_, err = st.GetHotel(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, st.UpdateHotel(ctx, hotel("missing", "X", "", base)), domain.ErrNotFound)
}

func testBookings(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, []string{"u1", "u2"},
		hotel("h1", "Alpha", "Bangkok", base),
		hotel("h2", "Bravo", "Phuket", base),
	)

	require.NoError(t, st.CreateBooking(ctx, booking("b1", "u1", "h1", 1), 0))
	require.NoError(t, st.CreateBooking(ctx, booking("b2", "u2", "h1", 2), 0))
	require.NoError(t, st.CreateBooking(ctx, booking("b3", "u1", "h2", 3), 0))

	err := st.CreateBooking(ctx, booking("b4", "u1", "missing", 4), 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v, err := st.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "u1", v.UserID)
	assert.Equal(t, domain.HotelSummary{ID: "h1", Name: "Alpha", Province: "Bangkok", Tel: "02-000-0000"}, v.Hotel)
	assert.True(t, v.ApptDate.Equal(base.AddDate(0, 1, 1)))

	mine, err := st.ListBookings(ctx, domain.BookingFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3"}, viewIDs(mine))

	atH1, err := st.ListBookings(ctx, domain.BookingFilter{HotelID: "h1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, viewIDs(atH1))

	all, err := st.ListBookings(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forHotels, err := st.ListBookingsForHotels(ctx, []string{"h2"})
	require.NoError(t, err)
	require.Len(t, forHotels, 1)
	assert.Equal(t, "b3", forHotels[0].ID)
	none, err := st.ListBookingsForHotels(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	moved := booking("b1", "u1", "h2", 9)
	require.NoError(t, st.UpdateBooking(ctx, moved))
	v, err = st.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "h2", v.Hotel.ID)
	assert.True(t, v.ApptDate.Equal(moved.ApptDate))

	assert.ErrorIs(t, st.UpdateBooking(ctx, booking("b1", "u1", "missing", 1)), domain.ErrNotFound)
	assert.ErrorIs(t, st.UpdateBooking(ctx, booking("nope", "u1", "h1", 1)), domain.ErrNotFound)

	require.NoError(t, st.DeleteBooking(ctx, "b2"))
	_, err = st.GetBooking(ctx, "b2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, st.DeleteBooking(ctx, "b2"), domain.ErrNotFound)
}

func testQuota(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, []string{"u1"}, hotel("h1", "Alpha", "Bangkok", base))

	for i := 0; i < 3; i++ {
		require.NoError(t, st.CreateBooking(ctx, booking(fmt.Sprintf("b%d", i), "u1", "h1", i), 3))
	}
	err := st.CreateBooking(ctx, booking("b3", "u1", "h1", 3), 3)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	// zero quota means unlimited
	require.NoError(t, st.CreateBooking(ctx, booking("b4", "u1", "h1", 4), 0))

	mine, err := st.ListBookings(ctx, domain.BookingFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}

func testConcurrentQuota(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, []string{"u1"}, hotel("h1", "Alpha", "Bangkok", base))

	const attempts, quota = 10, 3
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  int
		bad []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := st.CreateBooking(ctx, booking(fmt.Sprintf("c%d", i), "u1", "h1", i), quota)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrQuotaExceeded), errors.Is(err, domain.ErrConflict):
			default:
				bad = append(bad, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, bad)
	mine, err := st.ListBookings(ctx, domain.BookingFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(mine), quota)
	assert.Equal(t, ok, len(mine))
}

func testCascade(t *testing.T, st domain.Store) {
	ctx := context.Background()
	seed(t, st, []string{"u1", "u2"},
		hotel("h1", "Alpha", "Bangkok", base),
		hotel("h2", "Bravo", "Phuket", base),
	)
	require.NoError(t, st.CreateBooking(ctx, booking("b1", "u1", "h1", 1), 0))
	require.NoError(t, st.CreateBooking(ctx, booking("b2", "u2", "h1", 2), 0))
	require.NoError(t, st.CreateBooking(ctx, booking("b3", "u1", "h2", 3), 0))

	removed, err := st.DeleteHotel(ctx, "h1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	_, err = st.GetHotel(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	left, err := st.ListBookings(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b3"}, viewIDs(left))

	_, err = st.DeleteHotel(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ids(hs []domain.Hotel) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.ID
	}
	return out
}

func viewIDs(vs []domain.BookingView) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}
