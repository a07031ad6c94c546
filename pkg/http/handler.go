package http

import "github.com/labstack/echo/v4"

// Handler registers its routes on the Echo instance during server
// construction. The signals API handler is the only implementation in the
// serving path; tests substitute their own.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
