package bootstrap

import (
	"log/slog"
	"os"

	_ "github.com/eleven-am/snapsolve/docs"
	"github.com/eleven-am/snapsolve/internal/inference"
	"github.com/eleven-am/snapsolve/internal/solver"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

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

func ProvideSolverService(chat *inference.Client, submitter solver.ImageSubmitter, cfg *Config, logger *slog.Logger) *solver.Service {
	return solver.NewService(chat, submitter, cfg.RequestTimeout, logger.With("component", "solver"))
}

func ProvideSolverHandler(svc *solver.Service, cfg *Config, logger *slog.Logger) *solver.Handler {
	return solver.NewHandler(svc, cfg.UploadDir, logger.With("handler", "solver"))
}

func RegisterGatewayRoutes(e *echo.Echo, h *solver.Handler, cfg *Config) {
	api := e.Group("/api", middleware.BodyLimit(cfg.MaxUploadBytes))
	h.RegisterRoutes(api)

	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

var GatewayModule = fx.Options(
	fx.Provide(
		ProvideSolverService,
		ProvideSolverHandler,
	),
	fx.Invoke(RegisterGatewayRoutes),
)
