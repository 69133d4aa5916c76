package httpserver

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "hotel_booking/docs" // registers the swagger document
)

// errorResponse and tokenResponse document envelope shapes for swag.
type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// docsCSP admits the inline scripts and styles swagger-ui ships with.
const docsCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

func apiDocs() http.Handler {
	ui := httpSwagger.Handler(
		httpSwagger.URL("/api-docs/doc.json"),
		httpSwagger.DefaultModelsExpandDepth(-1),
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", docsCSP)
		ui.ServeHTTP(w, r)
	})
}
