package api

import (
	"github.com/labstack/echo/v4"

	xhttp "EarningsPull/pkg/http"
)

// Router fans RegisterRoutes out to every handler the server exposes.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(handlers ...xhttp.Handler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}
