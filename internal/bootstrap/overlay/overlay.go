// Package overlay wires the desktop process. It is kept apart from bootstrap
// because the hotkey library needs a display server at init.
package overlay

import (
	"context"
	"log/slog"

	"github.com/eleven-am/snapsolve/internal/bootstrap"
	"github.com/eleven-am/snapsolve/internal/capture"
	"github.com/eleven-am/snapsolve/internal/delivery"
	"github.com/eleven-am/snapsolve/internal/desktop"
	"github.com/eleven-am/snapsolve/internal/gatewayclient"
	"github.com/eleven-am/snapsolve/internal/health"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideHub(lc fx.Lifecycle, logger *slog.Logger) *delivery.Hub {
	hub := delivery.NewHub(0, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}

// ProvidePublisher sends events to local subscribers and, when Redis is
// configured, mirrors them onto the relay channel.
func ProvidePublisher(hub *delivery.Hub, redisClient *redis.Client, cfg *bootstrap.Config, logger *slog.Logger) delivery.Publisher {
	if redisClient == nil {
		return hub
	}
	return delivery.Fanout{hub, delivery.NewRedisPublisher(redisClient, cfg.RedisChannel, logger)}
}

func ProvideHealth(client *gatewayclient.Client, redisClient *redis.Client) *health.Handler {
	checks := []health.Check{health.PingCheck("gateway", false, client.Health)}
	if redisClient != nil {
		checks = append(checks, health.RedisCheck(redisClient))
	}
	return health.NewHandler(bootstrap.Version, checks...)
}

func ProvideGatewayClient(cfg *bootstrap.Config) *gatewayclient.Client {
	return gatewayclient.New(cfg.GatewayURL, cfg.RequestTimeout)
}

func ProvideScreen(cfg *bootstrap.Config) *desktop.Screen {
	return desktop.NewScreen(cfg.CaptureDisplay)
}

func ProvideDesktopHost(lc fx.Lifecycle, pub delivery.Publisher, logger *slog.Logger) *desktop.Host {
	host := desktop.NewHost(pub, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return host.Close()
		},
	})
	return host
}

func ProvideTrigger(screen *desktop.Screen, client *gatewayclient.Client, pub delivery.Publisher, cfg *bootstrap.Config, logger *slog.Logger) (*capture.Trigger, error) {
	return capture.NewTrigger(screen, client, pub, capture.Config{
		Dir:     cfg.CaptureDir,
		Timeout: cfg.RequestTimeout,
	}, logger)
}

func ProvideDeliveryHandler(hub *delivery.Hub, trigger *capture.Trigger, client *gatewayclient.Client, cfg *bootstrap.Config, logger *slog.Logger) *delivery.Handler {
	return delivery.NewHandler(hub, trigger, trigger, client, cfg.AllowedOrigin, cfg.RequestTimeout, logger)
}

func RegisterOverlayRoutes(e *echo.Echo, h *delivery.Handler) {
	h.RegisterRoutes(e)
}

// BindHotkeys registers the global shortcuts once the app starts. In-flight
// captures are abandoned on stop; their trackers still publish an error.
func BindHotkeys(lc fx.Lifecycle, trigger *capture.Trigger, host *desktop.Host, ws *delivery.Handler, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("capture directory", "dir", trigger.Dir())
			return trigger.Bind(ctx, host)
		},
		OnStop: func(context.Context) error {
			cancel()
			trigger.Wait()
			ws.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		bootstrap.ProvideRedisClient,
		ProvideHub,
		ProvidePublisher,
		ProvideGatewayClient,
		ProvideScreen,
		ProvideDesktopHost,
		ProvideTrigger,
		ProvideDeliveryHandler,
		ProvideHealth,
	),
	fx.Invoke(RegisterOverlayRoutes, BindHotkeys),
)

// Run starts the desktop side: hotkeys, capture pipeline and the UI
// event stream. It blocks until signalled. On macOS it must run on the main
// thread.
func Run() {
	fx.New(
		fx.Provide(bootstrap.LoadConfig, bootstrap.ProvideLogger),
		fx.Provide(func(cfg *bootstrap.Config) bootstrap.ListenAddr { return bootstrap.ListenAddr(cfg.OverlayAddr) }),
		Module,
		bootstrap.ServerModule,
	).Run()
}
