package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// DefaultAllowedOrigins are used when CORS_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:3000", // Next dev server
}

// AllowedMethods are the methods the board frontend uses.
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// AllowedHeaders are the request headers accepted cross-origin.
var AllowedHeaders = []string{
	"Origin",
	"Content-Type",
	"Accept",
	"Cache-Control",
}

// CORSConfig returns the CORS configuration used by the application.
// An empty origins list falls back to DefaultAllowedOrigins.
func CORSConfig(origins []string) middleware.CORSConfig {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders:     AllowedHeaders,
		ExposeHeaders:    []string{"Content-Disposition"},
	}
}
