// Package api serves device readings over HTTP, the endpoint the dashboard
// polls.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nibzard/portfolio-go/internal/readings"
	"github.com/nibzard/portfolio-go/internal/table"
)

// New returns an echo instance with the readings routes registered.
func New(store table.Table, apiKey string, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	Register(e, store, apiKey, logger)
	return e
}

// Register wires up the routes on e. An empty apiKey leaves the readings
// routes open.
func Register(e *echo.Echo, store table.Table, apiKey string, logger *log.Logger) {
	e.GET("/healthz", healthz)

	g := e.Group("/readings", APIKey(apiKey))
	g.GET("", getLatest(store))
	g.POST("", postReading(store, logger))
	g.GET("/history", getHistory(store))
}

// APIKey rejects requests whose x-api-key header does not match key.
func APIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if key == "" {
			return next
		}
		return func(c echo.Context) error {
			got := c.Request().Header.Get(readings.APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.String(http.StatusForbidden, "invalid api key")
			}
			return next(c)
		}
	}
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func getLatest(store table.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.QueryParam("device_id"))
		if id == "" {
			return c.String(http.StatusBadRequest, "missing device_id")
		}
		r, err := store.Latest(c.Request().Context(), id)
		if errors.Is(err, table.ErrNotFound) {
			return c.String(http.StatusNotFound, "unknown device")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, r.Fields)
	}
}

type historyEntry struct {
	Time   time.Time      `json:"time"`
	Fields map[string]any `json:"fields"`
}

func getHistory(store table.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.QueryParam("device_id"))
		if id == "" {
			return c.String(http.StatusBadRequest, "missing device_id")
		}
		rs, err := store.History(c.Request().Context(), id)
		if err != nil {
			return err
		}
		out := make([]historyEntry, len(rs))
		for i, r := range rs {
			out[i] = historyEntry{Time: r.Time, Fields: r.Fields}
		}
		return c.JSON(http.StatusOK, out)
	}
}

func postReading(store table.Table, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body map[string]any
		if err := c.Bind(&body); err != nil {
			return c.String(http.StatusBadRequest, "invalid JSON body")
		}
		id, _ := body["device_id"].(string)
		id = strings.TrimSpace(id)
		if id == "" {
			id = strings.TrimSpace(c.QueryParam("device_id"))
		}
		if id == "" {
			return c.String(http.StatusBadRequest, "missing device_id")
		}
		delete(body, "device_id")

		if err := store.Put(c.Request().Context(), table.Reading{DeviceID: id, Fields: body}); err != nil {
			logger.Error("store reading failed", "device", id, "err", err)
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warn("request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency, "err", v.Error)
				return nil
			}
			logger.Debug("request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}

// Serve runs e on addr until ctx is done, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
