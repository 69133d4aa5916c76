package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/domain"
)

// @Summary List hotels
// @Description List hotels with filtering, field selection, sorting and pagination
// @Tags Hotels
// @Produce json
// @Param select query string false "Comma separated fields to return"
// @Param sort query string false "Comma separated sort keys, prefix - for descending"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(25)
// @Success 200 {object} envelope{data=[]domain.Hotel,pagination=query.Pagination}
// @Failure 400 {object} errorResponse
// @Router /hotels [get]
func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	res, err := h.Hotels.ListHotels(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	list(w, r, res.Items, &res.Pagination)
}

// @Summary Get hotel
// @Tags Hotels
// @Produce json
// @Param id path string true "Hotel ID"
// @Success 200 {object} envelope{data=domain.Hotel}
// @Failure 404 {object} errorResponse
// @Router /hotels/{id} [get]
func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Hotels.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, hotel)
}

// @Summary Create hotel
// @Tags Hotels
// @Accept json
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param body body domain.Hotel true "Hotel"
// @Success 201 {object} envelope{data=domain.Hotel}
// @Failure 400,401,403 {object} errorResponse
// @Router /hotels [post]
func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.CreateHotel(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusCreated, hotel)
}

// @Summary Update hotel
// @Tags Hotels
// @Accept json
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Hotel ID"
// @Param body body domain.HotelPatch true "Fields to change"
// @Success 200 {object} envelope{data=domain.Hotel}
// @Failure 400,401,403,404 {object} errorResponse
// @Router /hotels/{id} [put]
func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	var patch domain.HotelPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Hotels.UpdateHotel(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, hotel)
}

// @Summary Delete hotel
// @Description Deletes the hotel and its bookings
// @Tags Hotels
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Param id path string true "Hotel ID"
// @Success 200 {object} envelope
// @Failure 401,403,404 {object} errorResponse
// @Router /hotels/{id} [delete]
func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.Hotels.DeleteHotel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, struct{}{})
}
