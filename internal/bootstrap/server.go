package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eleven-am/snapsolve/internal/health"
	"github.com/eleven-am/snapsolve/internal/shared"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

// ListenAddr is the address the process's echo server binds to. The gateway
// and the overlay provide different values.
type ListenAddr string

func corsConfig(origin string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins: []string{origin},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
		},
		MaxAge: 86400,
	}
}

func NewEchoServer(cfg *Config, logger *slog.Logger, h *health.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = shared.HTTPErrorHandler(logger)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(cfg.AllowedOrigin)))
	e.Use(h.Middleware())
	h.RegisterRoutes(e)
	return e
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, addr ListenAddr, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("http server listening", "addr", string(addr))
				if err := e.Start(string(addr)); err != nil && !errors.Is(err, http.ErrServerClosed) {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var ServerModule = fx.Options(
	fx.Provide(NewEchoServer),
	fx.Invoke(StartServer),
)

// Run starts the inference gateway and blocks until it is signalled to stop.
func Run() {
	fx.New(
		fx.Provide(LoadConfig, ProvideLogger),
		fx.Provide(func(cfg *Config) ListenAddr { return ListenAddr(cfg.ServerAddr()) }),
		InferenceModule,
		GatewayModule,
		GatewayHealthModule,
		ServerModule,
	).Run()
}
