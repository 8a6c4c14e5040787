package server

import (
	"context"
	"net/http"

	"petstore-backend/internal/handler"
	"petstore-backend/internal/metrics"
	appmw "petstore-backend/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	jwtSecret       string
	checkoutHandler *handler.CheckoutHandler
	orderHandler    *handler.OrderHandler
	petHandler      *handler.PetHandler
}

func NewServer(
	jwtSecret string,
	m *metrics.Metrics,
	logger *zap.Logger,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	petHandler *handler.PetHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger(logger))
	e.Use(m.Middleware())

	s := &Server{
		echo:            e,
		jwtSecret:       jwtSecret,
		checkoutHandler: checkoutHandler,
		orderHandler:    orderHandler,
		petHandler:      petHandler,
	}

	s.setupRoutes(m)
	return s
}

func (s *Server) setupRoutes(m *metrics.Metrics) {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/pets", s.petHandler.ListPets)
	api.GET("/pets/:id", s.petHandler.GetPet)

	auth := appmw.Auth(s.jwtSecret)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/create-session", s.checkoutHandler.CreateSession, auth)
	// Unauthenticated by design: the gateway signs the payload instead.
	checkout.POST("/webhook", s.checkoutHandler.Webhook)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.GET("", s.orderHandler.ListOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.POST("", s.orderHandler.CreateOrder)
	orders.PATCH("/:id/status", s.orderHandler.UpdateStatus)
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				logger.Warn("request", fields...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
