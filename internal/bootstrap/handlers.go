package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/cascade-detect/internal/detection"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	DetectionHandler *detection.Handler
	Config           *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	params.DetectionHandler.RegisterRoutes(e.Group(""))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Static(params.Config.StaticPrefix, params.Config.StaticDir)
	e.GET("/", func(c echo.Context) error {
		return c.File(params.Config.IndexHTML)
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

var HandlersModule = fx.Options(
	fx.Invoke(RegisterRoutes),
)
