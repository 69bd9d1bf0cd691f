package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eleven-am/snapsolve/internal/bootstrap"
	"github.com/eleven-am/snapsolve/internal/delivery"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow overlay events from the Redis relay channel",
	Long: `Subscribes to REDIS_CHANNEL and prints every overlay event as one JSON
line until interrupted. Requires REDIS_ADDR.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := bootstrap.NewRedisClient(cfg)
	if client == nil {
		return errors.New("REDIS_ADDR is not set")
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(cmd.OutOrStdout())
	printer := delivery.PublisherFunc(func(_ context.Context, ev delivery.Event) error {
		return enc.Encode(ev)
	})

	relay := delivery.NewRedisRelay(client, cfg.RedisChannel, printer, bootstrap.ProvideLogger(cfg))
	if err := relay.Start(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer relay.Stop()

	<-ctx.Done()
	return nil
}
