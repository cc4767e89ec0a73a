package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/logger"
)

// MetricsExporter records request metrics and serves the scrape endpoint.
type MetricsExporter interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

// ErrorReporter receives server errors, e.g. for Sentry.
type ErrorReporter interface {
	CaptureError(err error, tags map[string]string)
}

type nopReporter struct{}

func (nopReporter) CaptureError(error, map[string]string) {}

// Dependencies are the services the HTTP layer fronts. Metrics and Errors are
// optional.
type Dependencies struct {
	Clients   ClientService
	Freshness FreshnessReporter
	Auth      Authenticator
	Metrics   MetricsExporter
	Errors    ErrorReporter
	Health    HealthInfo
}

// Server is the HTTP server of the configuration service.
type Server struct {
	echo     *echo.Echo
	settings conf.ServerSettings
	reporter ErrorReporter
	log      logger.Logger
}

// NewServer builds the echo instance and registers every route.
func NewServer(settings conf.ServerSettings, deps Dependencies, log logger.Logger) *Server {
	s := &Server{
		echo:     echo.New(),
		settings: settings,
		reporter: deps.Errors,
		log:      log.Module("api"),
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleHTTPError
	e.Server.ReadTimeout = settings.ReadTimeout.Std()
	e.Server.WriteTimeout = settings.WriteTimeout.Std()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(s.log))
	if deps.Metrics != nil {
		e.Use(requestMetrics(deps.Metrics))
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	controller := &Controller{
		Group:     e.Group("/api"),
		clients:   deps.Clients,
		freshness: deps.Freshness,
		auth:      deps.Auth,
		health:    deps.Health,
		reporter:  s.reporter,
		log:       s.log,
	}
	controller.initRoutes(loginLimiter(settings))
	return s
}

// ServeHTTP lets the server be driven directly, without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := s.settings.Address()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.log.Info("http server listening", logger.String("address", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.ShutdownTimeout.Std())
	defer cancel()
	s.log.Info("shutting down http server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// handleHTTPError renders errors that escape the handlers, such as unknown
// routes, in the same shape as handler errors.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("unhandled request error", logger.String("path", c.Path()), logger.Error(err))
		s.reporter.CaptureError(err, requestTags(c))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorResponse{Error: message})
	}
	if writeErr != nil {
		s.log.Warn("failed to write error response", logger.Error(writeErr))
	}
}

// loginLimiter throttles credential endpoints per client IP.
func loginLimiter(settings conf.ServerSettings) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(settings.LoginRate),
		Burst:     settings.LoginBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusForbidden, errorResponse{Error: "Unable to identify client"})
		},
		DenyHandler: func(ctx echo.Context, _ string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many attempts, try again later"})
		},
	})
}
