package bootstrap

import (
	"github.com/eleven-am/snapsolve/internal/health"
	"github.com/eleven-am/snapsolve/internal/storage"
	"go.uber.org/fx"
)

const Version = "1.0.0"

func ProvideGatewayHealth(cfg *Config, store *storage.S3Store) *health.Handler {
	problem := ""
	if cfg.OpenAIAPIKey == "" {
		problem = "OPENAI_API_KEY is not set"
	}

	checks := []health.Check{health.ConfigCheck("inference", true, problem)}
	if store != nil {
		checks = append(checks, health.PingCheck("storage", true, store.Ping))
	}
	return health.NewHandler(Version, checks...)
}

var GatewayHealthModule = fx.Options(
	fx.Provide(ProvideGatewayHealth),
)
