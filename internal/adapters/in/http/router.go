package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the echo instance with request logging, panic recovery,
// OpenAPI request validation and every route of s. metrics may be nil.
func NewRouter(s *Server, metrics http.Handler, logger *slog.Logger) (*echo.Echo, error) {
	logger = logger.With("component", "http")

	doc, err := LoadOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	contract, err := ContractValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(context.Background(), level, "Request handled",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.Any("error", v.Error),
			)
			return nil
		},
	}))
	e.Use(contract)

	e.GET("/health", s.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("/api/v1")
	api.POST("/dispatch", s.Dispatch)
	api.GET("/tasks/:id", s.GetTask)
	api.GET("/couriers", s.GetCouriers)
	api.GET("/couriers/:id/routes", s.GetCourierRoutes)
	api.GET("/orders/ready", s.GetReadyOrders)
	api.GET("/events", s.StreamEvents)

	return e, nil
}
