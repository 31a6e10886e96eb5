// Package handlers exposes the lab's services over HTTP.
package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// requestTimeout bounds ordinary reads and writes.
	requestTimeout = 10 * time.Second
	// uploadTimeout bounds multipart uploads, which move up to 100MB.
	uploadTimeout = 2 * time.Minute
)

func withTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), d)
}
