package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/usecase"
	xhttp "EarningsPull/pkg/http"
	xlogger "EarningsPull/pkg/logger"
)

// EarningsHandler exposes the read surface of the cache over HTTP.
type EarningsHandler struct {
	logger *xlogger.Logger
	info   *usecase.CompanyInfo
}

func NewEarningsHandler(logger *xlogger.Logger, info *usecase.CompanyInfo) *EarningsHandler {
	return &EarningsHandler{logger: logger, info: info}
}

func (h *EarningsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/companies", h.Companies)
	g.GET("/company", h.Company)
	g.GET("/average", h.Average)
	g.GET("/reactions", h.Reactions)
	g.GET("/events", h.Events)
	g.GET("/next", h.Next)
	g.GET("/detail", h.Detail)
	g.GET("/range", h.Range)
	g.GET("/quotes", h.Quotes)
}

func (h *EarningsHandler) Companies(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.info.Symbols())
}

func (h *EarningsHandler) Company(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rec, ok := h.info.Record(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *EarningsHandler) Average(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	avg, ok := h.info.AverageChange(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, avg)
}

func (h *EarningsHandler) Reactions(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, ok := h.info.ReactionTable(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *EarningsHandler) Events(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	dates, ok := h.info.EventDates(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, dates)
}

// Next may fetch synchronously when the cache has no date for the symbol.
// The epoch timestamp in the response means "unknown, refresh pending".
func (h *EarningsHandler) Next(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ts := h.info.NextEarnings(c.Request().Context(), req.Symbol)
	return xhttp.SuccessResponse(c, map[string]time.Time{"next_earnings": ts})
}

func (h *EarningsHandler) Detail(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	detail, ok := h.info.Detail(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, map[string]string{"detail": detail})
}

func (h *EarningsHandler) Range(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	dr, ok := h.info.DateRange(req.Symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, dr)
}

func (h *EarningsHandler) Quotes(c echo.Context) error {
	req := &models.QuotesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := splitSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.BadRequestResponse(c, "symbols is empty")
	}
	return xhttp.SuccessResponse(c, h.info.LiveQuote(c.Request().Context(), symbols))
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
