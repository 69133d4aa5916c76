package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/domain"
)

type bookingBody struct {
	ApptDate *string `json:"apptDate"`
	Hotel    *string `json:"hotel"`
}

// listBookings serves both /bookings and /hotels/{id}/bookings.
//
// @Summary List bookings
// @Description Admins see every booking, users only their own
// @Tags Bookings
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Success 200 {object} envelope{data=[]domain.BookingView}
// @Failure 401 {object} errorResponse
// @Router /bookings [get]
// @Router /hotels/{id}/bookings [get]
func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	items, err := h.Bookings.ListBookings(r.Context(), who, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	list(w, r, items, nil)
}

// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} envelope{data=domain.BookingView}
// @Failure 401,403,404 {object} errorResponse
// @Router /bookings/{id} [get]
func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	b, err := h.Bookings.GetBooking(r.Context(), who, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, b)
}

// @Summary Create booking
// @Description Regular users may hold at most three bookings
// @Tags Bookings
// @Accept json
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Hotel ID"
// @Param body body bookingBody true "Booking"
// @Success 201 {object} envelope{data=domain.BookingView}
// @Failure 400,401,404,409 {object} errorResponse
// @Router /hotels/{id}/bookings [post]
func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	var in bookingBody
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.ApptDate == nil || *in.ApptDate == "" {
		writeError(w, r, &domain.ValidationError{Problems: []string{"apptDate is required"}})
		return
	}
	appt, err := parseDate("apptDate", *in.ApptDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), who, chi.URLParam(r, "id"), appt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusCreated, b)
}

// @Summary Update booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Booking ID"
// @Param body body bookingBody true "Fields to change"
// @Success 200 {object} envelope{data=domain.BookingView}
// @Failure 400,401,403,404 {object} errorResponse
// @Router /bookings/{id} [put]
func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	var in bookingBody
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	var patch domain.BookingPatch
	if in.ApptDate != nil {
		appt, err := parseDate("apptDate", *in.ApptDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.ApptDate = &appt
	}
	patch.HotelID = in.Hotel

	b, err := h.Bookings.UpdateBooking(r.Context(), who, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, b)
}

// @Summary Delete booking
// @Tags Bookings
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} envelope
// @Failure 401,403,404 {object} errorResponse
// @Router /bookings/{id} [delete]
func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	if err := h.Bookings.DeleteBooking(r.Context(), who, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, struct{}{})
}
