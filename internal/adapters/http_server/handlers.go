package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type Handlers struct {
	Hotels   *app.HotelService
	Bookings *app.BookingService
	Auth     *app.AuthService
	// Limiter is optional; nil disables rate limiting.
	Limiter      domain.RateLimiter
	CookieSecure bool
}

// envelope is the body of every API response.
type envelope struct {
	Success    bool              `json:"success"`
	Count      *int              `json:"count,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data,omitempty"`
	Token      string            `json:"token,omitempty"`
	Message    string            `json:"message,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api-docs/index.html", http.StatusMovedPermanently)
	})
	s.mux.Handle("/api-docs/*", apiDocs())

	s.mux.Route("/api/v1", func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(RateLimit(h.Limiter))
		}
		r.Use(h.authenticate)

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.listHotels)
			r.With(h.require(domain.CapManageHotels)).Post("/", h.createHotel)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getHotel)
				r.With(h.require(domain.CapManageHotels)).Put("/", h.updateHotel)
				r.With(h.require(domain.CapManageHotels)).Delete("/", h.deleteHotel)

				r.With(requireAuth).Get("/bookings", h.listBookings)
				r.With(requireAuth).Post("/bookings", h.createBooking)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.listBookings)
			r.Get("/{id}", h.getBooking)
			r.Put("/{id}", h.updateBooking)
			r.Delete("/{id}", h.deleteBooking)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.With(requireAuth).Get("/me", h.me)
			r.Get("/logout", h.logout)
		})
	})
}

// ---- identity ----

type ctxKey struct{}

func withIdentity(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, who)
}

func identityFrom(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return who, ok
}

const msgNotAuthorized = "not authorized to access this route"

// authenticate attaches the caller's identity when a valid token is
// presented. Missing or unverifiable tokens leave the request anonymous, so
// public routes still answer and protected ones fail in requireAuth.
func (h *Handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := auth.TokenFromRequest(r)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		who, err := h.Auth.Identify(r.Context(), tok)
		if errors.Is(err, domain.ErrUnauthenticated) {
			log.Debug().Err(err).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("ignoring unverifiable token")
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), who)))
	})
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFrom(r.Context()); !ok {
			writeJSON(w, r, http.StatusUnauthorized, envelope{Message: msgNotAuthorized})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) require(c domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, _ := identityFrom(r.Context())
			if !who.Can(c) {
				writeError(w, r, fmt.Errorf("user role %s is "+msgNotAuthorized+": %w", who.Role, domain.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// ---- responses ----

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuotaExceeded), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	env := envelope{Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		env.Errors = ve.Problems
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("route", routeOf(r)).
			Msg("request failed")
		env.Message = "Unexpected error"
	}
	writeJSON(w, r, status, env)
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeJSON sets success from status. Successful GETs carry a weak ETag and
// answer a matching If-None-Match with 304.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, env envelope) {
	env.Success = status < 400
	etag, body, err := calcETagAndBody(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		http.Error(w, `{"success":false,"message":"Unexpected error"}`, http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodGet && status == http.StatusOK {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func ok(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, status, envelope{Data: data})
}

func list[T any](w http.ResponseWriter, r *http.Request, items []T, p *query.Pagination) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	writeJSON(w, r, http.StatusOK, envelope{Count: &n, Pagination: p, Data: items})
}

// ---- requests ----

func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return &domain.ValidationError{Problems: []string{fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}}
	case errors.Is(err, io.EOF):
		return &domain.ValidationError{Problems: []string{"request body is empty"}}
	default:
		return &domain.ValidationError{Problems: []string{"malformed JSON body: " + err.Error()}}
	}
}

// parseDate accepts an RFC 3339 timestamp or a plain date.
func parseDate(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &domain.ValidationError{Problems: []string{field + " must be an RFC 3339 timestamp or a YYYY-MM-DD date"}}
}
