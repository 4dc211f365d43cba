package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	_ "jwt_auth/docs"
	"jwt_auth/internal/config"
	authmw "jwt_auth/internal/middleware"
	httprouters "jwt_auth/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	log      *slog.Logger
	e        *echo.Echo
	routers  *httprouters.Routers
	resolver authmw.IdentityResolver
	cfg      config.HTTPConfig
}

func New(log *slog.Logger, cfg config.HTTPConfig, routers *httprouters.Routers, resolver authmw.IdentityResolver) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validator.New()}

	e.Server.ReadTimeout = cfg.Timeout
	e.Server.WriteTimeout = cfg.Timeout

	e.Use(middleware.Recover())
	e.Use(authmw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:      log,
		e:        e,
		routers:  routers,
		resolver: resolver,
		cfg:      cfg,
	}
}

func (s *Server) BuildRouters() {
	s.e.GET("/", s.routers.Docs)
	s.e.GET("/docs/*", echoSwagger.WrapHandler)

	s.e.POST("/signup", s.routers.Signup)
	s.e.POST("/login", s.routers.Login)
	s.e.POST("/reset_email", s.routers.ResetEmail)
	s.e.GET("/me", s.routers.Me, authmw.Authenticate(s.log, s.resolver))

	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echoprometheus.NewHandler())
}

// Handler exposes the router so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info("starting http server", slog.String("op", op), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.cfg.Host, s.cfg.Port)
}
