package mysql

const hotelCols = `id, name, address, district, province, postalcode, tel, region, created_at`

const listHotelsSQL = `SELECT ` + hotelCols + ` FROM hotels`

const countHotelsSQL = `SELECT COUNT(*) FROM hotels`

const getHotelSQL = `SELECT ` + hotelCols + ` FROM hotels WHERE id = ?`

const insertHotelSQL = `
INSERT INTO hotels
  (id, name, address, district, province, postalcode, tel, region, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels SET
  name       = ?,
  address    = ?,
  district   = ?,
  province   = ?,
  postalcode = ?,
  tel        = ?,
  region     = ?
WHERE id = ?
`

const lockHotelSQL = `SELECT id FROM hotels WHERE id = ? FOR UPDATE`

// shared lock: a booking may reference the hotel but nobody may delete it
// until the transaction ends
const shareHotelSQL = `SELECT id FROM hotels WHERE id = ? FOR SHARE`

const deleteHotelBookingsSQL = `DELETE FROM bookings WHERE hotel_id = ?`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

// Bookings are always read with the summary of their hotel.
const bookingViewSQL = `
SELECT
  b.id,
  b.appt_date,
  b.user_id,
  b.created_at,
  h.id,
  h.name,
  h.province,
  h.tel
FROM bookings b
JOIN hotels h ON h.id = b.hotel_id
`

const bookingViewOrder = ` ORDER BY b.created_at ASC, b.id ASC`

const listBookingsForHotelsPrefix = `
SELECT id, appt_date, user_id, hotel_id, created_at
FROM bookings
WHERE hotel_id IN `

// serializes one user's booking creations
const lockUserSQL = `SELECT id FROM users WHERE id = ? FOR UPDATE`

const countUserBookingsSQL = `SELECT COUNT(*) FROM bookings WHERE user_id = ?`

const insertBookingSQL = `
INSERT INTO bookings (id, appt_date, user_id, hotel_id, created_at)
VALUES (?, ?, ?, ?, ?)
`

const lockBookingSQL = `SELECT id FROM bookings WHERE id = ? FOR UPDATE`

const updateBookingSQL = `UPDATE bookings SET appt_date = ?, hotel_id = ? WHERE id = ?`

const deleteBookingSQL = `DELETE FROM bookings WHERE id = ?`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const userCols = `id, name, email, tel, role, password_hash, created_at`

const insertUserSQL = `
INSERT INTO users (id, name, email, tel, role, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getUserSQL = `SELECT ` + userCols + ` FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT ` + userCols + ` FROM users WHERE email = ?`
