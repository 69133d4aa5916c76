package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.Store = (*Repo)(nil)

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	err := s.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.District,
		&h.Province,
		&h.PostalCode,
		&h.Tel,
		&h.Region,
		&h.CreatedAt,
	)
	return h, err
}

func scanBookingView(s scanner) (domain.BookingView, error) {
	var v domain.BookingView
	err := s.Scan(
		&v.ID,
		&v.ApptDate,
		&v.UserID,
		&v.CreatedAt,
		&v.Hotel.ID,
		&v.Hotel.Name,
		&v.Hotel.Province,
		&v.Hotel.Tel,
	)
	return v, err
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(&b.ID, &b.ApptDate, &b.UserID, &b.HotelID, &b.CreatedAt)
	return b, err
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	var role string
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Tel, &role, &u.PasswordHash, &u.CreatedAt)
	u.Role = domain.Role(role)
	return u, err
}

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	where, args, err := whereClause(q.Filter, hotelColumns)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(q.Sort, hotelColumns)
	if err != nil {
		return nil, err
	}
	stmt := listHotelsSQL + where + order + " LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)
	return queryMany(ctx, r.db, stmt, args, scanHotel)
}

func (r *Repo) CountHotels(ctx context.Context, f query.Filter) (int64, error) {
	where, args, err := whereClause(f, hotelColumns)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, countHotelsSQL+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if err != nil {
		return domain.Hotel{}, mapError(err)
	}
	return h, nil
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.ID,
		h.Name,
		h.Address,
		h.District,
		h.Province,
		h.PostalCode,
		h.Tel,
		h.Region,
		h.CreatedAt,
	)
	return mapError(err)
}

// UpdateHotel locks the row first: MySQL reports zero affected rows for an
// update that changes nothing, so RowsAffected cannot tell "missing" apart.
func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := withTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := lockRow(ctx, tx, lockHotelSQL, h.ID); err != nil {
			return struct{}{}, err
		}
		_, err := tx.ExecContext(ctx, updateHotelSQL,
			h.Name,
			h.Address,
			h.District,
			h.Province,
			h.PostalCode,
			h.Tel,
			h.Region,
			h.ID,
		)
		return struct{}{}, mapError(err)
	})
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id string) (int64, error) {
	return withTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		if err := lockRow(ctx, tx, lockHotelSQL, id); err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, deleteHotelBookingsSQL, id)
		if err != nil {
			return 0, mapError(err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, deleteHotelSQL, id); err != nil {
			return 0, mapError(err)
		}
		return removed, nil
	})
}

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

func (r *Repo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.BookingView, error) {
	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "b.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.HotelID != "" {
		conds = append(conds, "b.hotel_id = ?")
		args = append(args, f.HotelID)
	}
	stmt := bookingViewSQL
	if len(conds) > 0 {
		stmt += " WHERE " + strings.Join(conds, " AND ")
	}
	return queryMany(ctx, r.db, stmt+bookingViewOrder, args, scanBookingView)
}

func (r *Repo) ListBookingsForHotels(ctx context.Context, hotelIDs []string) ([]domain.Booking, error) {
	if len(hotelIDs) == 0 {
		return nil, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(hotelIDs)), ",")
	args := make([]any, len(hotelIDs))
	for i, id := range hotelIDs {
		args[i] = id
	}
	stmt := listBookingsForHotelsPrefix + "(" + marks + ") ORDER BY created_at ASC, id ASC"
	return queryMany(ctx, r.db, stmt, args, scanBooking)
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.BookingView, error) {
	v, err := scanBookingView(r.db.QueryRowContext(ctx, bookingViewSQL+" WHERE b.id = ?", id))
	if err != nil {
		return domain.BookingView{}, mapError(err)
	}
	return v, nil
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking, quota int) error {
	_, err := withTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := lockRow(ctx, tx, shareHotelSQL, b.HotelID); err != nil {
			return struct{}{}, fmt.Errorf("hotel %s: %w", b.HotelID, err)
		}
		if err := lockRow(ctx, tx, lockUserSQL, b.UserID); err != nil {
			return struct{}{}, fmt.Errorf("user %s: %w", b.UserID, err)
		}
		if quota > 0 {
			var n int
			if err := tx.QueryRowContext(ctx, countUserBookingsSQL, b.UserID).Scan(&n); err != nil {
				return struct{}{}, err
			}
			if n >= quota {
				return struct{}{}, fmt.Errorf("user %s already has %d bookings: %w", b.UserID, n, domain.ErrQuotaExceeded)
			}
		}
		_, err := tx.ExecContext(ctx, insertBookingSQL, b.ID, b.ApptDate, b.UserID, b.HotelID, b.CreatedAt)
		return struct{}{}, mapError(err)
	})
	return err
}

func (r *Repo) UpdateBooking(ctx context.Context, b domain.Booking) error {
	_, err := withTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := lockRow(ctx, tx, lockBookingSQL, b.ID); err != nil {
			return struct{}{}, err
		}
		if err := lockRow(ctx, tx, shareHotelSQL, b.HotelID); err != nil {
			return struct{}{}, fmt.Errorf("hotel %s: %w", b.HotelID, err)
		}
		_, err := tx.ExecContext(ctx, updateBookingSQL, b.ApptDate, b.HotelID, b.ID)
		return struct{}{}, mapError(err)
	})
	return err
}

func (r *Repo) DeleteBooking(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteBookingSQL, id)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID,
		u.Name,
		u.Email,
		u.Tel,
		string(u.Role),
		u.PasswordHash,
		u.CreatedAt,
	)
	return mapError(err)
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserSQL, id))
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return u, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return u, nil
}

func lockRow(ctx context.Context, tx *sql.Tx, stmt, id string) error {
	var got string
	err := tx.QueryRowContext(ctx, stmt, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return mapError(err)
}
