package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockBoard/internal/cache"
	"StockBoard/internal/chart"
	"StockBoard/internal/dashboard"
	"StockBoard/internal/model"
)

// Dashboard is the pipeline the HTTP layer drives.
type Dashboard interface {
	Options(ctx context.Context) ([]model.SelectOption, error)
	Select(ctx context.Context, ticker int) (*dashboard.Selection, error)
	Invalidate()
	CacheStats() (snapshot, history cache.Stats)
}

// Server serves the single-page dashboard and its JSON API.
type Server struct {
	App      *fiber.App
	Board    Dashboard
	Renderer chart.Renderer
	Logger   *zap.Logger
}

type recordResponse struct {
	Record model.DisplayRecord `json:"record"`
	Notice string              `json:"notice,omitempty"`
}

// New wires the routes.
func New(board Dashboard, renderer chart.Renderer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{Board: board, Renderer: renderer, Logger: logger}
	s.App = fiber.New(fiber.Config{
		AppName:               "StockBoard",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.App.Use(recover.New(recover.Config{EnableStackTrace: true, StackTraceHandler: s.logPanic}))
	s.App.Use(s.requestLogger)

	s.App.Get("/", s.index)
	s.App.Get("/healthz", s.health)
	api := s.App.Group("/api")
	api.Get("/tickers", s.listTickers)
	api.Get("/tickers/:ticker", s.getTicker)
	api.Get("/tickers/:ticker/chart", s.getChart)
	api.Delete("/cache", s.clearCache)
	return s
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.Logger.Info("http server listening", zap.String("addr", addr))
	return s.App.Listen(addr)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(indexHTML)
}

func (s *Server) health(c *fiber.Ctx) error {
	snap, hist := s.Board.CacheStats()
	return c.JSON(fiber.Map{"status": "ok", "snapshot_cache": snap, "history_cache": hist})
}

func (s *Server) listTickers(c *fiber.Ctx) error {
	opts, err := s.Board.Options(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(opts)
}

func (s *Server) getTicker(c *fiber.Ctx) error {
	ticker, err := tickerParam(c)
	if err != nil {
		return err
	}
	sel, err := s.Board.Select(c.UserContext(), ticker)
	if err != nil {
		return err
	}
	return c.JSON(recordResponse{Record: sel.Record, Notice: sel.Notice})
}

func (s *Server) getChart(c *fiber.Ctx) error {
	ticker, err := tickerParam(c)
	if err != nil {
		return err
	}
	params, err := chartParams(c)
	if err != nil {
		return err
	}
	sel, err := s.Board.Select(c.UserContext(), ticker)
	if err != nil {
		return err
	}
	if sel.Series.Len() == 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "no trading history to chart")
	}
	fig, err := s.Renderer.Render(sel.Record.Name+" Stock Price", sel.Series, params)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fig)
}

func (s *Server) clearCache(c *fiber.Ctx) error {
	s.Board.Invalidate()
	return c.SendStatus(fiber.StatusNoContent)
}

func tickerParam(c *fiber.Ctx) (int, error) {
	ticker, err := strconv.Atoi(c.Params("ticker"))
	if err != nil || ticker <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ticker must be a positive integer")
	}
	return ticker, nil
}

// chartParams reads indicator settings from the query string, starting
// from the default layout.
func chartParams(c *fiber.Ctx) (chart.Params, error) {
	p := chart.DefaultParams()
	if v := c.Query("sma"); v != "" {
		p.SMAPeriods = nil
		for _, f := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return p, fiber.NewError(fiber.StatusBadRequest, "sma must be a comma separated list of periods")
			}
			p.SMAPeriods = append(p.SMAPeriods, n)
		}
	}
	var err error
	if p.RSIPeriod, err = queryInt(c, "rsi", p.RSIPeriod); err != nil {
		return p, err
	}
	if p.BollingerPeriod, err = queryInt(c, "bb", p.BollingerPeriod); err != nil {
		return p, err
	}
	if v := c.Query("bbstd"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fiber.NewError(fiber.StatusBadRequest, "bbstd must be a number")
		}
		p.BollingerWidth = w
	}
	p.Volume = c.QueryBool("volume", p.Volume)
	p.MACD = c.QueryBool("macd", p.MACD)
	if err := p.Validate(); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return p, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be an integer")
	}
	return n, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, model.ErrTickerNotInSnapshot), errors.Is(err, model.ErrSymbolNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrMalformedResponse):
		return fiber.StatusBadGateway
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		s.Logger.Error("request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	} else {
		s.Logger.Info("request rejected", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) logPanic(c *fiber.Ctx, e interface{}) {
	s.Logger.Error("handler panic", zap.String("path", c.Path()), zap.Any("panic", e))
}

// requestHeader carries the request ID. An inbound value is kept.
const requestHeader = "X-Request-ID"

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	id := c.Get(requestHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestHeader, id)
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.Logger.Debug("http request",
		zap.String("request_id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)))
	return err
}
