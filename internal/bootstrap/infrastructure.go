package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/snapsolve/internal/inference"
	"github.com/eleven-am/snapsolve/internal/solver"
	"github.com/eleven-am/snapsolve/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewRedisClient returns nil when REDIS_ADDR is empty; every consumer treats
// a nil client as "relay disabled".
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func ProvideRedisClient(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) *redis.Client {
	client := NewRedisClient(cfg)
	if client == nil {
		logger.Info("redis relay disabled")
		return nil
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideInferenceConfig(cfg *Config) inference.Config {
	return inference.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		TextModel:   cfg.TextModel,
		VisionModel: cfg.VisionModel,
		Detail:      cfg.ImageDetail,
		Timeout:     cfg.RequestTimeout,
	}
}

func ProvideChatClient(ic inference.Config) *inference.Client {
	return inference.NewClient(ic)
}

// ProvideObjectStore returns nil unless the upload strategy is active.
func ProvideObjectStore(lc fx.Lifecycle, cfg *Config) (*storage.S3Store, error) {
	if cfg.Strategy() != solver.StrategyUpload {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	store, err := storage.NewS3Store(ctx, storage.Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		KeyPrefix:       cfg.S3KeyPrefix,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return store, nil
}

func ProvideImageSubmitter(cfg *Config, ic inference.Config, chat *inference.Client, store *storage.S3Store, logger *slog.Logger) solver.ImageSubmitter {
	var submitter solver.ImageSubmitter
	switch cfg.Strategy() {
	case solver.StrategyUpload:
		submitter = solver.NewUploadSubmitter(store, inference.NewResponsesClient(ic), cfg.SolvePrompt)
	default:
		submitter = solver.NewEmbedSubmitter(chat, cfg.SolvePrompt)
	}

	logger.Info("image strategy selected", "strategy", submitter.Strategy(), "vision_model", ic.VisionModel)
	return submitter
}

var InferenceModule = fx.Options(
	fx.Provide(
		ProvideInferenceConfig,
		ProvideChatClient,
		ProvideObjectStore,
		ProvideImageSubmitter,
	),
)
