package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"EarningsPull/internal/usecase"
	xlogger "EarningsPull/pkg/logger"
)

// QuoteStreamHandler pushes live quotes over a websocket. The client asks for
// symbols via the query string and receives a quote map every interval until
// it disconnects.
type QuoteStreamHandler struct {
	logger   *xlogger.Logger
	info     *usecase.CompanyInfo
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewQuoteStreamHandler(logger *xlogger.Logger, info *usecase.CompanyInfo, interval time.Duration) *QuoteStreamHandler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &QuoteStreamHandler{
		logger:   logger,
		info:     info,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *QuoteStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/quotes", h.Stream)
}

func (h *QuoteStreamHandler) Stream(c echo.Context) error {
	symbols := splitSymbols(c.QueryParam("symbols"))
	if len(symbols) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "symbols is required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	// drain client frames so pings and close messages are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	send := func() error {
		quotes := h.info.LiveQuote(ctx, symbols)
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(quotes)
	}
	if err := send(); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return nil
		case <-ticker.C:
			if err := send(); err != nil {
				h.logger.Debug("quote stream closed", xlogger.Error(err))
				return nil
			}
		}
	}
}
