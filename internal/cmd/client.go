package cmd

import (
	"fmt"

	"github.com/eleven-am/snapsolve/internal/bootstrap"
	"github.com/eleven-am/snapsolve/internal/gatewayclient"
)

func loadConfig() (*bootstrap.Config, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if gatewayURL != "" {
		cfg.GatewayURL = gatewayURL
	}
	return cfg, nil
}

func newGatewayClient() (*gatewayclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return gatewayclient.New(cfg.GatewayURL, cfg.RequestTimeout), nil
}
