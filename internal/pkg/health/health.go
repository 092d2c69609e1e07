package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/pkg/logger"
)

// Checker verifies one dependency is reachable
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to a Checker
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// Service runs registered dependency checks for health endpoints
type Service struct {
	logger   *logger.ZapLogger
	checkers map[string]Checker
}

// NewService creates a health service
func NewService(zapLogger *logger.ZapLogger) *Service {
	return &Service{
		logger:   zapLogger,
		checkers: make(map[string]Checker),
	}
}

// AddChecker registers a named dependency checker
func (s *Service) AddChecker(name string, checker Checker) {
	s.checkers[name] = checker
}

// Status is the aggregate health report
type Status struct {
	Status  string            `json:"status"`
	App     string            `json:"app"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RegisterEndpoints registers liveness and readiness endpoints
func RegisterEndpoints(e *echo.Echo, appName, version string, svc *Service) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, Status{Status: "ok", App: appName, Version: version})
	})

	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		status := Status{
			Status:  "ok",
			App:     appName,
			Version: version,
			Checks:  make(map[string]string, len(svc.checkers)),
		}

		code := http.StatusOK
		for name, checker := range svc.checkers {
			if err := checker.Check(ctx); err != nil {
				svc.logger.Warn("Health check failed",
					logger.String("dependency", name),
					logger.Err(err))
				status.Checks[name] = err.Error()
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = "ok"
		}

		return c.JSON(code, status)
	})
}
