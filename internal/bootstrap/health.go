package bootstrap

import (
	"github.com/eleven-am/cascade-detect/internal/artifact"
	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/eleven-am/cascade-detect/internal/health"
	"github.com/eleven-am/cascade-detect/internal/pipeline"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const version = "1.0.0"

func ProvideHealthHandler(
	dispatcher *detect.Dispatcher,
	scratch *artifact.Scratch,
	registry *artifact.Registry,
	service *pipeline.Service,
) *health.Handler {
	var probe health.RegistryProber
	if registry != nil {
		probe = registry
	}
	return health.NewHandler(
		dispatcher,
		scratch,
		probe,
		service,
		version,
	)
}

func metricsMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(metricsMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
