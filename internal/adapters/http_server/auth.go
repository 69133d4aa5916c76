package httpserver

import (
	"net/http"
	"time"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/app"
)

// @Summary Register
// @Description Create a user account and issue a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body app.Registration true "New user"
// @Success 200 {object} tokenResponse
// @Failure 400,409 {object} errorResponse
// @Router /auth/register [post]
func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in app.Registration
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sendToken(w, r, sess)
}

// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body app.Credentials true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 400,401 {object} errorResponse
// @Router /auth/login [post]
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in app.Credentials
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sendToken(w, r, sess)
}

// @Summary Current user
// @Tags Auth
// @Produce json
// @Security Bearer
// @Security CookieAuth
// @Success 200 {object} envelope{data=domain.User}
// @Failure 401 {object} errorResponse
// @Router /auth/me [get]
func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	u, err := h.Auth.Me(r.Context(), who)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, r, http.StatusOK, u)
}

// @Summary Log out
// @Description Overwrite the token cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} envelope
// @Router /auth/logout [get]
func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	ok(w, r, http.StatusOK, struct{}{})
}

// sendToken answers with the token in the body and as an http-only cookie.
func (h *Handlers) sendToken(w http.ResponseWriter, r *http.Request, sess app.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.Expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, envelope{Token: sess.Token})
}
