package middleware

import (
	"context"

	"examLens/business/analytics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RequestIDHeader = "X-Request-ID"

// RequestID assigns a trace id to every request, echoes it back in the
// response header, and threads it through the request context so engine
// logs can be correlated with the HTTP call.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}

			ctx := context.WithValue(c.Request().Context(), analytics.TraceIDKey, rid)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(RequestIDHeader, rid)

			return next(c)
		}
	}
}
